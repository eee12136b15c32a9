package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// paycode keywords are matched against the upper-cased activity program in this order
var paycodeKeywords = []struct {
	keyword string
	code    string
}{
	{"SICK", "S-SICK"},
	{"COMP", "C-COMPTIME"},
	{"VAC", "V-VACATION"},
	{"HOLIDAY", "H-HOLIDAY"},
}

const regularPaycode = "R-REGULAR PA"

var countyPayrollHeader = []string{"JobNumber", "Paycode", "Time Group/Description", "Hours", "HourlyRate", "Salary", "AccountDistribution"}

type CountyPayrollRow struct {
	JobNumber           int             `json:"job_number"`
	Paycode             string          `json:"paycode"`
	Hours               decimal.Decimal `json:"hours"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	AccountDistribution string          `json:"account_distribution"`
}

func Paycode(program string) string {
	upper := strings.ToUpper(program)
	for _, k := range paycodeKeywords {
		if strings.Contains(upper, k.keyword) {
			return k.code
		}
	}
	return regularPaycode
}

// AccountDistribution builds the county account string from the fund and line numbers.
func AccountDistribution(fundCode string, lineCode string) string {
	return fundCode + "50290" + lineCode
}

// GetCountyPayroll sums each employee's hours per paycode for a pay period.
func GetCountyPayroll(ctx context.Context, payPeriodId string) ([]CountyPayrollRow, error) {
	if _, err := utils.FetchModel[models.PayPeriod](ctx, payPeriodId); err != nil {
		return nil, err
	}
	payrolls, err := models.ListPayrolls(ctx, payPeriodId, 0)
	if err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)

	programs := make(map[int]string)
	employees := make(map[int]*models.Employee)
	distributions := make(map[int]string)
	type rowKey struct {
		paycode    string
		employeeId int
	}
	hours := make(map[rowKey]decimal.Decimal)

	for _, p := range payrolls {
		program, ok := programs[p.ActivityId]
		if !ok {
			activity, err := utils.FetchModelTx[models.Activity](db, p.ActivityId)
			if err != nil {
				return nil, err
			}
			program = activity.Program
			programs[p.ActivityId] = program
		}
		if _, ok := employees[p.EmployeeId]; !ok {
			employee, err := utils.FetchModelTx[models.Employee](db, p.EmployeeId)
			if err != nil {
				return nil, err
			}
			employees[p.EmployeeId] = employee
			distribution, err := employeeDistribution(db, employee)
			if err != nil {
				return nil, err
			}
			distributions[p.EmployeeId] = distribution
		}
		key := rowKey{paycode: Paycode(program), employeeId: p.EmployeeId}
		hours[key] = hours[key].Add(p.Hours)
	}

	rows := make([]CountyPayrollRow, 0, len(hours))
	for key, h := range hours {
		rows = append(rows, CountyPayrollRow{
			JobNumber:           key.employeeId,
			Paycode:             key.paycode,
			Hours:               h,
			HourlyRate:          employees[key.employeeId].PayRate,
			AccountDistribution: distributions[key.employeeId],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Paycode != rows[j].Paycode {
			return rows[i].Paycode < rows[j].Paycode
		}
		return rows[i].JobNumber < rows[j].JobNumber
	})
	return rows, nil
}

func employeeDistribution(db *gorm.DB, employee *models.Employee) (string, error) {
	if employee.PayItemId == nil {
		return "", utils.NewIntegrityError("pay_item_id", "employee", strconv.Itoa(employee.ID), "employee has no pay item")
	}
	item, err := utils.FetchModelTx[models.Item](db, *employee.PayItemId)
	if err != nil {
		return "", err
	}
	line, err := utils.FetchModelTx[models.Line](db, item.LineId)
	if err != nil {
		return "", err
	}
	fund, err := utils.FetchModelTx[models.Fund](db, line.FundId)
	if err != nil {
		return "", err
	}
	return AccountDistribution(fund.Code, line.Code), nil
}

func WriteCountyPayrollCSV(w io.Writer, rows []CountyPayrollRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(countyPayrollHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.JobNumber),
			r.Paycode,
			"",
			r.Hours.StringFixed(2),
			r.HourlyRate.StringFixed(2),
			"",
			r.AccountDistribution,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func CountyPayrollCSV(ctx context.Context, payPeriodId string) ([]byte, error) {
	rows, err := GetCountyPayroll(ctx, payPeriodId)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteCountyPayrollCSV(&buf, rows); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	archive(ctx, "county-payroll-"+payPeriodId+".csv", ContentTypeCSV, data)
	return data, nil
}
