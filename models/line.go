package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

const (
	msgFundBalanceExpense = "Not enough remaining balance in fund"
	msgFundBalanceRevenue = "Trying to decrease remaining balance below what is already budgeted to expenses"
	msgLineAlreadySpent   = "Expenses have already exceeded that budget"
)

// Line is a budget allocation inside a Fund.
// BudgetSpent and TotalIncome are running counters kept by postings.
type Line struct {
	ID              string          `gorm:"primaryKey;size:40" json:"id"`
	Code            string          `gorm:"size:20;not null" json:"code"`
	FundId          string          `gorm:"size:20;index;not null" json:"fund_id"`
	FundYear        int             `gorm:"index;not null" json:"fund_year"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Type            LineType        `gorm:"size:10;not null" json:"type"`
	Budgeted        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"budgeted"`
	BudgetSpent     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"budget_spent"`
	TotalIncome     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_income"`
	BudgetRemaining decimal.Decimal `gorm:"-" json:"budget_remaining"`
	DeptId          *int            `json:"dept_id"`
	Cofund          bool            `gorm:"not null;default:false" json:"cofund"`
	GenLedger       string          `gorm:"size:50" json:"gen_ledger"`
	CountyCode      string          `gorm:"size:50" json:"county_code"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLine struct {
	FundId     string          `json:"fund_id" validate:"required"`
	Code       string          `json:"code" validate:"required,max=20,excludes=-"`
	Name       string          `json:"name" validate:"required,max=255"`
	Type       LineType        `json:"type" validate:"required"`
	Budgeted   decimal.Decimal `json:"budgeted"`
	DeptId     *int            `json:"dept_id"`
	Cofund     bool            `json:"cofund"`
	GenLedger  string          `json:"gen_ledger" validate:"max=50"`
	CountyCode string          `json:"county_code" validate:"max=50"`
}

type UpdateLineInput struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Budgeted decimal.Decimal `json:"budgeted"`
}

func (l *Line) AfterFind(tx *gorm.DB) error {
	l.BudgetRemaining = l.Budgeted.Sub(l.BudgetSpent)
	return nil
}

func (l *Line) refreshRemaining() {
	l.BudgetRemaining = l.Budgeted.Sub(l.BudgetSpent)
}

func LineID(fundId string, code string) string {
	return fundId + "-" + code
}

func (input *NewLine) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return utils.NewValidationError("type", "type must be Revenue or Expense")
	}
	if input.Budgeted.IsNegative() {
		return utils.NewValidationError("budgeted", "budgeted cannot be negative")
	}
	return utils.ValidateOptionalResourceId[Dept](ctx, "dept_id", "dept", input.DeptId)
}

// validateLineBudget checks the candidate against its siblings under the signed ledger convention.
// fund must be locked by the caller's transaction.
func validateLineBudget(tx *gorm.DB, fund *Fund, lineId string, lineType LineType, budgeted decimal.Decimal, spent decimal.Decimal) error {
	var siblings []Line
	if err := tx.Where("fund_id = ? AND id <> ?", fund.ID, lineId).Find(&siblings).Error; err != nil {
		return err
	}
	available := fund.CashBalance
	for _, s := range siblings {
		switch s.Type {
		case LineTypeExpense:
			available = available.Sub(s.Budgeted)
		case LineTypeRevenue:
			available = available.Add(s.Budgeted)
		}
	}
	if lineType == LineTypeExpense {
		available = available.Sub(budgeted)
		if available.IsNegative() {
			return utils.NewValidationError("budgeted", msgFundBalanceExpense)
		}
		if budgeted.LessThan(spent) {
			return utils.NewValidationError("budgeted", msgLineAlreadySpent)
		}
		return nil
	}
	available = available.Add(budgeted)
	if available.IsNegative() {
		return utils.NewValidationError("budgeted", msgFundBalanceRevenue)
	}
	return nil
}

func CreateLine(ctx context.Context, input *NewLine) (*Line, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	var line Line
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fund, err := utils.FetchModelForUpdate[Fund](tx, input.FundId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return utils.NewIntegrityError("fund_id", "fund", input.FundId, "")
			}
			return err
		}
		id := LineID(fund.ID, input.Code)
		var count int64
		if err := tx.Model(&Line{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.NewValidationError("code", "line already exists in this fund")
		}
		budgeted := input.Budgeted.Round(2)
		if err := validateLineBudget(tx, fund, id, input.Type, budgeted, decimal.Zero); err != nil {
			return err
		}
		line = Line{
			ID:         id,
			Code:       input.Code,
			FundId:     fund.ID,
			FundYear:   fund.Year,
			Name:       input.Name,
			Type:       input.Type,
			Budgeted:   budgeted,
			DeptId:     input.DeptId,
			Cofund:     input.Cofund,
			GenLedger:  input.GenLedger,
			CountyCode: input.CountyCode,
		}
		return tx.Create(&line).Error
	})
	if err != nil {
		return nil, err
	}
	line.refreshRemaining()
	return &line, nil
}

func UpdateLine(ctx context.Context, id string, input *UpdateLineInput) (*Line, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Budgeted.IsNegative() {
		return nil, utils.NewValidationError("budgeted", "budgeted cannot be negative")
	}

	var line *Line
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := utils.FetchModelTx[Line](tx, id)
		if err != nil {
			return err
		}
		fund, err := utils.FetchModelForUpdate[Fund](tx, current.FundId)
		if err != nil {
			return err
		}
		line, err = utils.FetchModelForUpdate[Line](tx, id)
		if err != nil {
			return err
		}
		budgeted := input.Budgeted.Round(2)
		if err := validateLineBudget(tx, fund, line.ID, line.Type, budgeted, line.BudgetSpent); err != nil {
			return err
		}
		line.Name = input.Name
		line.Budgeted = budgeted
		return tx.Model(line).Updates(map[string]interface{}{
			"name":     line.Name,
			"budgeted": line.Budgeted,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	line.refreshRemaining()
	return line, nil
}

func DeleteLine(ctx context.Context, id string) (*Line, error) {
	line, err := utils.FetchModel[Line](ctx, id)
	if err != nil {
		return nil, err
	}
	if count, err := utils.ResourceCountWhere[Item](ctx, "line_id = ?", id); err != nil {
		return nil, err
	} else if count > 0 {
		return nil, utils.NewValidationError("id", "line still has items")
	}
	if err := config.GetDB().WithContext(ctx).Delete(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func GetLine(ctx context.Context, id string) (*Line, error) {
	return utils.FetchModel[Line](ctx, id)
}

func ListLines(ctx context.Context, fundId string, year int) ([]*Line, error) {
	return utils.FetchAllModels[Line](ctx, func(db *gorm.DB) *gorm.DB {
		if fundId != "" {
			db = db.Where("fund_id = ?", fundId)
		}
		if year > 0 {
			db = db.Where("fund_year = ?", year)
		}
		return db
	})
}
