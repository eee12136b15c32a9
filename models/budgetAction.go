package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// BudgetAction records a board-approved transfer between two FSSF account codes.
type BudgetAction struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Date      time.Time       `gorm:"type:date;not null;index" json:"date"`
	FssfFrom  string          `gorm:"size:20;not null" json:"fssf_from"`
	FssfTo    string          `gorm:"size:20;not null" json:"fssf_to"`
	Comment   string          `gorm:"size:255" json:"comment"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Approved  bool            `gorm:"not null;default:false" json:"approved"`
	FsResNo   int             `gorm:"not null" json:"fs_res_no"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBudgetAction struct {
	Date     time.Time       `json:"date" validate:"required"`
	FssfFrom string          `json:"fssf_from" validate:"required,max=20"`
	FssfTo   string          `json:"fssf_to" validate:"required,max=20"`
	Comment  string          `json:"comment" validate:"max=255"`
	Amount   decimal.Decimal `json:"amount"`
	Approved bool            `json:"approved"`
	FsResNo  int             `json:"fs_res_no" validate:"min=0"`
}

func (input *NewBudgetAction) validate() error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "amount must be positive")
	}
	if input.FssfFrom == input.FssfTo {
		return utils.NewValidationError("fssf_to", "transfer must move between two different accounts")
	}
	return nil
}

func CreateBudgetAction(ctx context.Context, input *NewBudgetAction) (*BudgetAction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	action := BudgetAction{
		Date:     utils.DateOnly(input.Date),
		FssfFrom: input.FssfFrom,
		FssfTo:   input.FssfTo,
		Comment:  input.Comment,
		Amount:   utils.RoundCents(input.Amount),
		Approved: input.Approved,
		FsResNo:  input.FsResNo,
	}
	if err := config.GetDB().WithContext(ctx).Create(&action).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

func UpdateBudgetAction(ctx context.Context, id int, input *NewBudgetAction) (*BudgetAction, error) {
	action, err := utils.FetchModel[BudgetAction](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(action).Updates(map[string]interface{}{
		"date":      utils.DateOnly(input.Date),
		"fssf_from": input.FssfFrom,
		"fssf_to":   input.FssfTo,
		"comment":   input.Comment,
		"amount":    utils.RoundCents(input.Amount),
		"approved":  input.Approved,
		"fs_res_no": input.FsResNo,
	}).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func DeleteBudgetAction(ctx context.Context, id int) (*BudgetAction, error) {
	action, err := utils.FetchModel[BudgetAction](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func GetBudgetAction(ctx context.Context, id int) (*BudgetAction, error) {
	return utils.FetchModel[BudgetAction](ctx, id)
}

func ListBudgetActions(ctx context.Context, approved *bool) ([]*BudgetAction, error) {
	return utils.FetchAllModels[BudgetAction](ctx, func(db *gorm.DB) *gorm.DB {
		if approved != nil {
			db = db.Where("approved = ?", *approved)
		}
		return db
	})
}
