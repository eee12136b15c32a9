package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

const (
	msgGrantAwardExceeded  = "Budgeted is more than is left in Grant Award"
	msgGrantRevenueLineCap = "Already have the max amount of revenue lines for the grant"
)

// GrantLine has the same shape as Line, scoped to a Grant.
type GrantLine struct {
	ID              int             `gorm:"primary_key" json:"id"`
	GrantId         int             `gorm:"index;not null" json:"grant_id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Type            LineType        `gorm:"size:10;not null" json:"type"`
	Budgeted        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"budgeted"`
	BudgetSpent     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"budget_spent"`
	TotalIncome     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_income"`
	BudgetRemaining decimal.Decimal `gorm:"-" json:"budget_remaining"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGrantLine struct {
	GrantId  int             `json:"grant_id" validate:"required"`
	Name     string          `json:"name" validate:"required,max=255"`
	Type     LineType        `json:"type" validate:"required"`
	Budgeted decimal.Decimal `json:"budgeted"`
}

type UpdateGrantLineInput struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Budgeted decimal.Decimal `json:"budgeted"`
}

func (l *GrantLine) AfterFind(tx *gorm.DB) error {
	l.refreshRemaining()
	return nil
}

func (l *GrantLine) refreshRemaining() {
	l.BudgetRemaining = l.Budgeted.Sub(l.BudgetSpent)
}

// validateGrantBudget runs with the grant row locked by the caller.
func validateGrantBudget(tx *gorm.DB, grant *Grant, lineId int, lineType LineType, budgeted decimal.Decimal, spent decimal.Decimal) error {
	var siblings []GrantLine
	if err := tx.Where("grant_id = ? AND id <> ?", grant.ID, lineId).Find(&siblings).Error; err != nil {
		return err
	}
	total := budgeted
	revenueLines := 0
	for _, s := range siblings {
		total = total.Add(s.Budgeted)
		if s.Type == LineTypeRevenue {
			revenueLines++
		}
	}
	if lineType == LineTypeRevenue && revenueLines >= grant.MaxRevenueLines {
		return utils.NewValidationError("type", msgGrantRevenueLineCap)
	}
	if total.GreaterThan(grant.AwardAmount) {
		return utils.NewValidationError("budgeted", msgGrantAwardExceeded)
	}
	if lineType == LineTypeExpense && budgeted.LessThan(spent) {
		return utils.NewValidationError("budgeted", msgLineAlreadySpent)
	}
	return nil
}

func CreateGrantLine(ctx context.Context, input *NewGrantLine) (*GrantLine, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, utils.NewValidationError("type", "type must be Revenue or Expense")
	}
	if input.Budgeted.IsNegative() {
		return nil, utils.NewValidationError("budgeted", "budgeted cannot be negative")
	}

	var line GrantLine
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := utils.FetchModelForUpdate[Grant](tx, input.GrantId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return utils.NewIntegrityError("grant_id", "grant", strconv.Itoa(input.GrantId), "")
			}
			return err
		}
		budgeted := input.Budgeted.Round(2)
		if err := validateGrantBudget(tx, grant, 0, input.Type, budgeted, decimal.Zero); err != nil {
			return err
		}
		line = GrantLine{
			GrantId:  grant.ID,
			Name:     input.Name,
			Type:     input.Type,
			Budgeted: budgeted,
		}
		return tx.Create(&line).Error
	})
	if err != nil {
		return nil, err
	}
	line.refreshRemaining()
	return &line, nil
}

func UpdateGrantLine(ctx context.Context, id int, input *UpdateGrantLineInput) (*GrantLine, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Budgeted.IsNegative() {
		return nil, utils.NewValidationError("budgeted", "budgeted cannot be negative")
	}

	var line *GrantLine
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := utils.FetchModelTx[GrantLine](tx, id)
		if err != nil {
			return err
		}
		grant, err := utils.FetchModelForUpdate[Grant](tx, current.GrantId)
		if err != nil {
			return err
		}
		line, err = utils.FetchModelForUpdate[GrantLine](tx, id)
		if err != nil {
			return err
		}
		budgeted := input.Budgeted.Round(2)
		// the line's own revenue slot is already counted by excluding it from siblings
		if err := validateGrantBudget(tx, grant, line.ID, line.Type, budgeted, line.BudgetSpent); err != nil {
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

func DeleteGrantLine(ctx context.Context, id int) (*GrantLine, error) {
	line, err := utils.FetchModel[GrantLine](ctx, id)
	if err != nil {
		return nil, err
	}
	for _, check := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Expense](ctx, "grant_line_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Revenue](ctx, "grant_line_id = ?", id) },
	} {
		count, err := check()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("id", "grant line has postings")
		}
	}
	if err := config.GetDB().WithContext(ctx).Delete(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func GetGrantLine(ctx context.Context, id int) (*GrantLine, error) {
	return utils.FetchModel[GrantLine](ctx, id)
}

func ListGrantLines(ctx context.Context, grantId int) ([]*GrantLine, error) {
	return utils.FetchAllModels[GrantLine](ctx, func(db *gorm.DB) *gorm.DB {
		if grantId > 0 {
			return db.Where("grant_id = ?", grantId)
		}
		return db
	})
}
