package reports

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/models"
)

func BenefitsReport(ctx context.Context) (*TableReport, error) {
	calcs, err := models.CalculateAllBenefits(ctx)
	if err != nil {
		return nil, err
	}
	report := &TableReport{
		Subtitle: "Hourly fringe rates and annual compensation per employee.",
		Header:   []string{"Employee", "Name", "Rate", "Total Hourly", "Leave %", "Board Share", "Life", "Salary", "Fringes", "Total Comp"},
	}
	var salary, fringes, total decimal.Decimal
	for _, c := range calcs {
		salary = salary.Add(c.Salary)
		fringes = fringes.Add(c.Fringes)
		total = total.Add(c.TotalComp)
		report.Rows = append(report.Rows, []string{
			strconv.Itoa(c.EmployeeId),
			c.EmployeeName,
			FormatUSD(c.PayRate),
			FormatUSD(c.TotalHourly),
			c.PercentLeave.StringFixed(2),
			FormatUSD(c.BoardShareHrly),
			FormatUSD(c.LifeHourly),
			FormatUSD(c.Salary),
			FormatUSD(c.Fringes),
			FormatUSD(c.TotalComp),
		})
	}
	report.Totals = []ReportTotal{
		{Label: "Total Salaries", Value: FormatUSD(salary)},
		{Label: "Total Fringes", Value: FormatUSD(fringes)},
		{Label: "Total Compensation", Value: FormatUSD(total)},
	}
	return report, nil
}
