package reports

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

type DailyPosting struct {
	Kind        string          `json:"kind"`
	Id          int             `json:"id"`
	FundId      string          `json:"fund_id"`
	LineId      string          `json:"line_id"`
	ItemName    string          `json:"item_name"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   int             `json:"reference"`
	PaymentType string          `json:"payment_type"`
	Employee    string          `json:"employee"`
	Comment     string          `json:"comment"`
}

type DailyReport struct {
	Date          time.Time       `json:"date"`
	Postings      []DailyPosting  `json:"postings"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalRevenues decimal.Decimal `json:"total_revenues"`
}

func GetDailyReport(ctx context.Context, day time.Time) (*DailyReport, error) {
	day = utils.DateOnly(day)
	filter := models.PostingFilter{From: day, To: day}
	expenses, err := models.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	revenues, err := models.ListRevenues(ctx, filter)
	if err != nil {
		return nil, err
	}

	var itemIds, employeeIds []int
	for _, e := range expenses {
		itemIds = append(itemIds, e.ItemId)
		employeeIds = append(employeeIds, e.EmployeeId)
	}
	for _, r := range revenues {
		itemIds = append(itemIds, r.ItemId)
		employeeIds = append(employeeIds, r.EmployeeId)
	}
	itemNames, employeeNames, err := postingNames(ctx, itemIds, employeeIds)
	if err != nil {
		return nil, err
	}

	report := &DailyReport{Date: day}
	for _, e := range expenses {
		report.TotalExpenses = report.TotalExpenses.Add(e.Amount)
		report.Postings = append(report.Postings, DailyPosting{
			Kind:        "Expense",
			Id:          e.ID,
			FundId:      e.FundId,
			LineId:      e.LineId,
			ItemName:    itemNames[e.ItemId],
			Amount:      e.Amount,
			Reference:   e.Warrant,
			PaymentType: string(e.PaymentType),
			Employee:    employeeNames[e.EmployeeId],
			Comment:     e.Comment,
		})
	}
	for _, r := range revenues {
		report.TotalRevenues = report.TotalRevenues.Add(r.Amount)
		report.Postings = append(report.Postings, DailyPosting{
			Kind:        "Revenue",
			Id:          r.ID,
			FundId:      r.FundId,
			LineId:      r.LineId,
			ItemName:    itemNames[r.ItemId],
			Amount:      r.Amount,
			Reference:   r.Reference,
			PaymentType: string(r.PaymentType),
			Employee:    employeeNames[r.EmployeeId],
			Comment:     r.Comment,
		})
	}
	sort.SliceStable(report.Postings, func(i, j int) bool {
		if report.Postings[i].FundId != report.Postings[j].FundId {
			return report.Postings[i].FundId < report.Postings[j].FundId
		}
		return report.Postings[i].LineId < report.Postings[j].LineId
	})
	return report, nil
}

func postingNames(ctx context.Context, itemIds []int, employeeIds []int) (map[int]string, map[int]string, error) {
	db := config.GetDB().WithContext(ctx)
	itemNames := make(map[int]string)
	employeeNames := make(map[int]string)
	if ids := utils.UniqueSlice(itemIds); len(ids) > 0 {
		var items []models.Item
		if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return nil, nil, err
		}
		for _, it := range items {
			itemNames[it.ID] = it.Name
		}
	}
	if ids := utils.UniqueSlice(employeeIds); len(ids) > 0 {
		var employees []models.Employee
		if err := db.Where("id IN ?", ids).Find(&employees).Error; err != nil {
			return nil, nil, err
		}
		for _, e := range employees {
			employeeNames[e.ID] = e.FullName()
		}
	}
	return itemNames, employeeNames, nil
}

func (d *DailyReport) TableReport() *TableReport {
	report := &TableReport{
		Subtitle: "Postings recorded on " + d.Date.Format("January 2, 2006"),
		Header:   []string{"Type", "ID", "Fund", "Line", "Item", "Amount", "Employee", "Ref", "Comment", "Pay"},
	}
	for _, p := range d.Postings {
		report.Rows = append(report.Rows, []string{
			p.Kind,
			strconv.Itoa(p.Id),
			p.FundId,
			p.LineId,
			p.ItemName,
			FormatUSD(p.Amount),
			p.Employee,
			strconv.Itoa(p.Reference),
			p.Comment,
			p.PaymentType,
		})
	}
	report.Totals = []ReportTotal{
		{Label: "Total Expenses", Value: FormatUSD(d.TotalExpenses)},
		{Label: "Total Revenues", Value: FormatUSD(d.TotalRevenues)},
		{Label: "Net", Value: FormatUSD(d.TotalRevenues.Sub(d.TotalExpenses))},
		{Label: "Postings", Value: fmt.Sprint(len(d.Postings))},
	}
	return report
}

func DailyReportPDF(ctx context.Context, day time.Time) ([]byte, error) {
	started := time.Now()
	defer logSlowReport(ctx, "DailyReportPDF", started, nil)

	report, err := GetDailyReport(ctx, day)
	if err != nil {
		return nil, err
	}
	data, err := report.TableReport().Bytes()
	if err != nil {
		return nil, err
	}
	archive(ctx, "daily-"+report.Date.Format("2006-01-02")+".pdf", ContentTypePDF, data)
	return data, nil
}
