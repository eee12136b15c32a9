package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Fund is a cash pool for one fiscal year.
// CashBalance only moves through postings; Total keeps the opening balance.
type Fund struct {
	ID          string          `gorm:"primaryKey;size:20" json:"id"`
	Code        string          `gorm:"size:10;not null" json:"code"`
	Year        int             `gorm:"index;not null" json:"year"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	DeptId      *int            `json:"dept_id"`
	Sof         string          `gorm:"size:50" json:"sof"`
	MacElig     bool            `gorm:"not null;default:false" json:"mac_elig"`
	CashBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cash_balance"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFund struct {
	Code        string          `json:"code" validate:"required,max=10,excludes=-"`
	Year        int             `json:"year" validate:"required,gte=2000,lte=2100"`
	Name        string          `json:"name" validate:"required,max=255"`
	DeptId      *int            `json:"dept_id"`
	Sof         string          `json:"sof" validate:"max=50"`
	MacElig     bool            `json:"mac_elig"`
	CashBalance decimal.Decimal `json:"cash_balance"`
}

// UpdateFundInput leaves balances alone; they belong to postings.
type UpdateFundInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	DeptId  *int   `json:"dept_id"`
	Sof     string `json:"sof" validate:"max=50"`
	MacElig bool   `json:"mac_elig"`
}

func FundID(year int, code string) string {
	return fmt.Sprintf("%d-%s", year, code)
}

func (input *NewFund) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.CashBalance.IsNegative() {
		return utils.NewValidationError("cash_balance", "cash balance cannot be negative")
	}
	if count, err := utils.ResourceCountWhere[Fund](ctx, "id = ?", FundID(input.Year, input.Code)); err != nil {
		return err
	} else if count > 0 {
		return utils.NewValidationError("code", "fund already exists for this year")
	}
	return utils.ValidateOptionalResourceId[Dept](ctx, "dept_id", "dept", input.DeptId)
}

func CreateFund(ctx context.Context, input *NewFund) (*Fund, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	balance := input.CashBalance.Round(2)
	fund := Fund{
		ID:          FundID(input.Year, input.Code),
		Code:        input.Code,
		Year:        input.Year,
		Name:        input.Name,
		DeptId:      input.DeptId,
		Sof:         input.Sof,
		MacElig:     input.MacElig,
		CashBalance: balance,
		Total:       balance,
	}
	if err := config.GetDB().WithContext(ctx).Create(&fund).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func UpdateFund(ctx context.Context, id string, input *UpdateFundInput) (*Fund, error) {
	fund, err := utils.FetchModel[Fund](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalResourceId[Dept](ctx, "dept_id", "dept", input.DeptId); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(fund).Updates(map[string]interface{}{
		"name":     input.Name,
		"dept_id":  input.DeptId,
		"sof":      input.Sof,
		"mac_elig": input.MacElig,
	}).Error; err != nil {
		return nil, err
	}
	return fund, nil
}

func DeleteFund(ctx context.Context, id string) (*Fund, error) {
	fund, err := utils.FetchModel[Fund](ctx, id)
	if err != nil {
		return nil, err
	}
	if count, err := utils.ResourceCountWhere[Line](ctx, "fund_id = ?", id); err != nil {
		return nil, err
	} else if count > 0 {
		return nil, utils.NewValidationError("id", "fund still has budget lines")
	}
	if err := config.GetDB().WithContext(ctx).Delete(fund).Error; err != nil {
		return nil, err
	}
	return fund, nil
}

func GetFund(ctx context.Context, id string) (*Fund, error) {
	return utils.FetchModel[Fund](ctx, id)
}

func ListFunds(ctx context.Context, year int) ([]*Fund, error) {
	return utils.FetchAllModels[Fund](ctx, func(db *gorm.DB) *gorm.DB {
		if year > 0 {
			return db.Where("year = ?", year)
		}
		return db
	})
}

// FundBudgetSummary uses the signed ledger convention:
// committed = expense budgets - revenue budgets, available = cash - committed.
type FundBudgetSummary struct {
	FundId           string          `json:"fund_id"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	ExpenseBudgeted  decimal.Decimal `json:"expense_budgeted"`
	RevenueBudgeted  decimal.Decimal `json:"revenue_budgeted"`
	Committed        decimal.Decimal `json:"committed"`
	Available        decimal.Decimal `json:"available"`
	Spent            decimal.Decimal `json:"spent"`
	Income           decimal.Decimal `json:"income"`
	ExpenseLineCount int             `json:"expense_line_count"`
	RevenueLineCount int             `json:"revenue_line_count"`
}

func GetFundBudgetSummary(ctx context.Context, id string) (*FundBudgetSummary, error) {
	fund, err := utils.FetchModel[Fund](ctx, id)
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := config.GetDB().WithContext(ctx).Where("fund_id = ?", id).Find(&lines).Error; err != nil {
		return nil, err
	}
	summary := FundBudgetSummary{FundId: fund.ID, CashBalance: fund.CashBalance}
	for _, l := range lines {
		switch l.Type {
		case LineTypeExpense:
			summary.ExpenseBudgeted = summary.ExpenseBudgeted.Add(l.Budgeted)
			summary.ExpenseLineCount++
		case LineTypeRevenue:
			summary.RevenueBudgeted = summary.RevenueBudgeted.Add(l.Budgeted)
			summary.RevenueLineCount++
		}
		summary.Spent = summary.Spent.Add(l.BudgetSpent)
		summary.Income = summary.Income.Add(l.TotalIncome)
	}
	summary.Committed = summary.ExpenseBudgeted.Sub(summary.RevenueBudgeted)
	summary.Available = fund.CashBalance.Sub(summary.Committed)
	return &summary, nil
}
