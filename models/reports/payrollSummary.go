package reports

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

type PayrollTotal struct {
	Key   string          `json:"key"`
	Name  string          `json:"name"`
	Hours decimal.Decimal `json:"hours"`
	Pay   decimal.Decimal `json:"pay"`
}

type EmployeePayrollTotal struct {
	PayrollTotal
	Activities []PayrollTotal `json:"activities"`
}

type PayrollSummary struct {
	PayPeriodId string                 `json:"pay_period_id"`
	Hours       decimal.Decimal        `json:"hours"`
	Pay         decimal.Decimal        `json:"pay"`
	ByFund      []PayrollTotal         `json:"by_fund"`
	ByActivity  []PayrollTotal         `json:"by_activity"`
	ByEmployee  []EmployeePayrollTotal `json:"by_employee"`
}

type payrollTotals struct {
	order  []string
	totals map[string]*PayrollTotal
}

func newPayrollTotals() *payrollTotals {
	return &payrollTotals{totals: make(map[string]*PayrollTotal)}
}

func (p *payrollTotals) add(key string, name string, hours decimal.Decimal, pay decimal.Decimal) {
	t, ok := p.totals[key]
	if !ok {
		t = &PayrollTotal{Key: key, Name: name}
		p.totals[key] = t
		p.order = append(p.order, key)
	}
	t.Hours = t.Hours.Add(hours)
	t.Pay = t.Pay.Add(pay)
}

// list returns the totals ordered by name, then key.
func (p *payrollTotals) list() []PayrollTotal {
	out := make([]PayrollTotal, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, *p.totals[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// GetPayrollSummary totals one pay period's payroll rows by fund, activity and employee.
func GetPayrollSummary(ctx context.Context, payPeriodId string) (*PayrollSummary, error) {
	if _, err := utils.FetchModel[models.PayPeriod](ctx, payPeriodId); err != nil {
		return nil, err
	}
	rows, err := models.ListPayrolls(ctx, payPeriodId, 0)
	if err != nil {
		return nil, err
	}

	db := config.GetDB().WithContext(ctx)
	var activities []models.Activity
	if err := db.Find(&activities).Error; err != nil {
		return nil, err
	}
	activityById := make(map[int]models.Activity, len(activities))
	for _, a := range activities {
		activityById[a.ID] = a
	}
	var funds []models.Fund
	if err := db.Find(&funds).Error; err != nil {
		return nil, err
	}
	fundNames := make(map[string]string, len(funds))
	for _, f := range funds {
		fundNames[f.ID] = f.Name
	}
	var employeeIds []int
	for _, r := range rows {
		employeeIds = append(employeeIds, r.EmployeeId)
	}
	_, employeeNames, err := postingNames(ctx, nil, employeeIds)
	if err != nil {
		return nil, err
	}

	summary := &PayrollSummary{PayPeriodId: payPeriodId}
	byFund := newPayrollTotals()
	byActivity := newPayrollTotals()
	byEmployee := newPayrollTotals()
	employeeActivities := make(map[string]*payrollTotals)
	for _, r := range rows {
		activity := activityById[r.ActivityId]
		activityKey := strconv.Itoa(r.ActivityId)
		employeeKey := strconv.Itoa(r.EmployeeId)

		summary.Hours = summary.Hours.Add(r.Hours)
		summary.Pay = summary.Pay.Add(r.PayAmount)
		byFund.add(activity.FundId, fundNames[activity.FundId], r.Hours, r.PayAmount)
		byActivity.add(activityKey, activity.Program, r.Hours, r.PayAmount)
		byEmployee.add(employeeKey, employeeNames[r.EmployeeId], r.Hours, r.PayAmount)
		if employeeActivities[employeeKey] == nil {
			employeeActivities[employeeKey] = newPayrollTotals()
		}
		employeeActivities[employeeKey].add(activityKey, activity.Program, r.Hours, r.PayAmount)
	}
	summary.ByFund = byFund.list()
	summary.ByActivity = byActivity.list()
	for _, t := range byEmployee.list() {
		summary.ByEmployee = append(summary.ByEmployee, EmployeePayrollTotal{
			PayrollTotal: t,
			Activities:   employeeActivities[t.Key].list(),
		})
	}
	return summary, nil
}
