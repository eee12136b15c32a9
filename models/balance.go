package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CounterTotals is what a full scan of postings says a counter should hold.
type CounterTotals struct {
	Spent  decimal.Decimal
	Income decimal.Decimal
}

type postingAmount struct {
	Key    string
	Amount decimal.Decimal
}

// sumByKey adds amounts in Go so the result does not depend on the dialect's SUM over decimals.
func sumByKey(tx *gorm.DB, model interface{}, keyColumn string, where string) (map[string]decimal.Decimal, error) {
	var rows []postingAmount
	q := tx.Model(model).Select(keyColumn + " AS `key`, amount")
	if where != "" {
		q = q.Where(where)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal)
	for _, r := range rows {
		sums[r.Key] = sums[r.Key].Add(r.Amount)
	}
	return sums, nil
}

// ScanLineTotals recomputes budget_spent and total_income for every line from its postings.
func ScanLineTotals(tx *gorm.DB) (map[string]CounterTotals, error) {
	spent, err := sumByKey(tx, &Expense{}, "line_id", "")
	if err != nil {
		return nil, err
	}
	income, err := sumByKey(tx, &Revenue{}, "line_id", "")
	if err != nil {
		return nil, err
	}
	return mergeTotals(spent, income), nil
}

// ScanGrantLineTotals is ScanLineTotals for grant lines, keyed by grant line id.
func ScanGrantLineTotals(tx *gorm.DB) (map[string]CounterTotals, error) {
	spent, err := sumByKey(tx, &Expense{}, "grant_line_id", "grant_line_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	income, err := sumByKey(tx, &Revenue{}, "grant_line_id", "grant_line_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	return mergeTotals(spent, income), nil
}

// ScanFundFlows sums expenses (Spent) and revenues (Income) per fund.
func ScanFundFlows(tx *gorm.DB) (map[string]CounterTotals, error) {
	spent, err := sumByKey(tx, &Expense{}, "fund_id", "")
	if err != nil {
		return nil, err
	}
	income, err := sumByKey(tx, &Revenue{}, "fund_id", "")
	if err != nil {
		return nil, err
	}
	return mergeTotals(spent, income), nil
}

func mergeTotals(spent map[string]decimal.Decimal, income map[string]decimal.Decimal) map[string]CounterTotals {
	totals := make(map[string]CounterTotals, len(spent)+len(income))
	for k, v := range spent {
		t := totals[k]
		t.Spent = v
		totals[k] = t
	}
	for k, v := range income {
		t := totals[k]
		t.Income = v
		totals[k] = t
	}
	return totals
}

// ExpectedCash is the cash a fund should hold given its opening total and postings.
func ExpectedCash(fund *Fund, flows CounterTotals) decimal.Decimal {
	return fund.Total.Add(flows.Income).Sub(flows.Spent)
}
