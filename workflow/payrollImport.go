package workflow

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("budget-workflow")

const (
	payrollWarrant = 1
	payrollComment = "Payroll"
)

type PayrollImportOptions struct {
	// PostingDate is the date of every posted expense; zero means today.
	PostingDate time.Time
}

type PayrollImportResult struct {
	Rows     int      `json:"rows"`
	Posted   int      `json:"posted"`
	Skipped  int      `json:"skipped"`
	Payrolls int      `json:"payrolls"`
	Keys     []string `json:"keys"`
}

// payrollEntry is one parsed line of the time tracker export.
type payrollEntry struct {
	row       int
	activity  string
	employee  string
	begDate   time.Time
	endDate   time.Time
	startTime time.Time
	hours     decimal.Decimal
}

func parseClock(value string, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, l := range []string{layout, "03:04:05 PM", "3:04:05 PM", "03:04 PM", "3:04 PM", "15:04"} {
		if t, err := time.Parse(l, value); err == nil {
			return t, nil
		}
	}
	if first, _, ok := strings.Cut(value, " "); ok {
		return time.Parse(layout, first)
	}
	return time.Time{}, fmt.Errorf("bad time %q", value)
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parsePayrollCSV maps the export's columns through cols. A missing mapped column rejects the file.
func parsePayrollCSV(r io.Reader, cols *config.PayrollColumns) ([]payrollEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil || len(records) == 0 {
		return nil, utils.NewValidationError("file", utils.BadFileMessage)
	}
	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	pos := make(map[string]int)
	for _, field := range []string{"activity", "employee", "beg_date", "end_date", "start_time", "hours"} {
		i, ok := index[cols.Header(field)]
		if !ok {
			return nil, utils.NewValidationError("file", utils.BadFileMessage)
		}
		pos[field] = i
	}

	var entries []payrollEntry
	for n, record := range records[1:] {
		rowNo := n + 2
		if blankRecord(record) {
			continue
		}
		get := func(field string) string {
			if i := pos[field]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		entry := payrollEntry{row: rowNo, activity: get("activity"), employee: get("employee")}
		if entry.begDate, err = time.Parse(cols.DateFormat, get("beg_date")); err != nil {
			return nil, utils.WithRow(utils.NewValidationError("beg_date", "bad date "+get("beg_date")), rowNo)
		}
		if entry.endDate, err = time.Parse(cols.DateFormat, get("end_date")); err != nil {
			return nil, utils.WithRow(utils.NewValidationError("end_date", "bad date "+get("end_date")), rowNo)
		}
		if entry.startTime, err = parseClock(get("start_time"), cols.TimeFormat); err != nil {
			return nil, utils.WithRow(utils.NewValidationError("start_time", "bad time "+get("start_time")), rowNo)
		}
		if entry.hours, err = utils.ParseAmount(get("hours")); err != nil {
			return nil, utils.WithRow(utils.NewValidationError("hours", "not a number: "+get("hours")), rowNo)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// payrollItemId picks the item charged for an hour of the activity.
func payrollItemId(activity *models.Activity, employee *models.Employee) (int, error) {
	key := strconv.Itoa(employee.ID)
	switch activity.PayType {
	case models.PayTypeSpecial:
		if employee.SpecialPayItemId == nil {
			return 0, utils.NewIntegrityError("employee", "employee", key, "employee has no special pay item")
		}
		return *employee.SpecialPayItemId, nil
	case models.PayTypeAdmin:
		if employee.PayItemId == nil {
			return 0, utils.NewIntegrityError("employee", "employee", key, "employee has no pay item")
		}
		return *employee.PayItemId, nil
	}
	return activity.ItemId, nil
}

// ImportPayroll posts one expense per time entry in a single transaction.
// Any failing row rolls back the whole file; entries already posted are skipped.
func ImportPayroll(ctx context.Context, r io.Reader, opts PayrollImportOptions) (*PayrollImportResult, error) {
	ctx, span := tracer.Start(ctx, "ImportPayroll")
	defer span.End()

	result, err := importPayroll(ctx, r, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("payroll.rows", result.Rows),
		attribute.Int("payroll.posted", result.Posted),
		attribute.Int("payroll.skipped", result.Skipped),
	)
	return result, nil
}

func importPayroll(ctx context.Context, r io.Reader, opts PayrollImportOptions) (*PayrollImportResult, error) {
	cols, err := config.LoadPayrollColumns()
	if err != nil {
		return nil, err
	}
	entries, err := parsePayrollCSV(r, cols)
	if err != nil {
		return nil, err
	}
	postingDate := utils.DateOnly(opts.PostingDate)
	if postingDate.IsZero() {
		postingDate = utils.Today()
	}

	result := &PayrollImportResult{Rows: len(entries)}
	err = withPayrollImportLock(ctx, config.GetDB(), func(conn *gorm.DB) error {
		tx := conn.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
		if err := postPayrollEntries(ctx, tx, entries, postingDate, result); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
	if err != nil {
		return nil, err
	}

	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"field":          "ImportPayroll",
		"rows":           result.Rows,
		"posted":         result.Posted,
		"skipped":        result.Skipped,
		"correlation_id": cid,
	}).Info("payroll import committed")
	return result, nil
}

func postPayrollEntries(ctx context.Context, tx *gorm.DB, entries []payrollEntry, postingDate time.Time, result *PayrollImportResult) error {
	periods, err := models.LoadPayPeriodsTx(tx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		period, err := models.MatchPayPeriod(periods, entry.begDate, entry.endDate)
		if err != nil {
			return utils.WithRow(err, entry.row)
		}
		employee, err := models.FindEmployeeByName(tx, entry.employee)
		if err != nil {
			return utils.WithRow(err, entry.row)
		}
		activity, err := models.FindActivityByProgram(tx, entry.activity)
		if err != nil {
			return utils.WithRow(err, entry.row)
		}
		people, err := models.FindPeopleByName(tx, employee.FullName())
		if err != nil {
			return utils.WithRow(err, entry.row)
		}
		itemId, err := payrollItemId(activity, employee)
		if err != nil {
			return utils.WithRow(err, entry.row)
		}
		amount := utils.RoundCents(employee.PayRate.Mul(entry.hours))

		key := models.ExpenseFullID(employee.ID, activity.ID, entry.begDate, entry.startTime)
		existing, err := models.ExistingExpenseKeys(tx, []string{key})
		if err != nil {
			return err
		}
		if existing[key] || seen[key] {
			result.Skipped++
		} else {
			_, err := models.PostExpenseTx(ctx, tx, &models.NewExpense{
				ItemId:        itemId,
				EmployeeId:    employee.ID,
				PeopleId:      people.ID,
				ActivityId:    activity.ID,
				Amount:        amount,
				Date:          postingDate,
				Warrant:       payrollWarrant,
				Comment:       payrollComment,
				ExpenseFullId: key,
			})
			if err != nil {
				return utils.WithRow(err, entry.row)
			}
			result.Posted++
			result.Keys = append(result.Keys, key)
		}
		seen[key] = true

		_, created, err := models.RecordPayrollTx(tx, models.Payroll{
			BegDate:       utils.DateOnly(entry.begDate),
			EndDate:       utils.DateOnly(entry.endDate),
			EmployeeId:    employee.ID,
			ActivityId:    activity.ID,
			Hours:         entry.hours,
			PayAmount:     amount,
			PayPeriodId:   period.ID,
			ExpenseFullId: key,
		})
		if err != nil {
			return err
		}
		if created {
			result.Payrolls++
		}
	}
	return nil
}
