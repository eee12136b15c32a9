package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Carryover is a fund's fiscal year close: what it began with, what was left and what moves forward.
type Carryover struct {
	ID             int             `gorm:"primary_key" json:"id"`
	FundId         string          `gorm:"size:20;index;not null" json:"fund_id"`
	DeptId         int             `gorm:"index;not null" json:"dept_id"`
	Fy             int             `gorm:"index;not null" json:"fy"`
	CoAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"co_amount"`
	Encumbered     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"encumbered"`
	YearEndBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"year_end_balance"`
	BegBalance     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"beg_balance"`
	FyBegDate      time.Time       `gorm:"type:date;not null" json:"fy_beg_date"`
	FyEndDate      time.Time       `gorm:"type:date;not null" json:"fy_end_date"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCarryover struct {
	FundId         string          `json:"fund_id" validate:"required"`
	DeptId         int             `json:"dept_id" validate:"required"`
	Fy             int             `json:"fy" validate:"required,min=1900,max=9999"`
	CoAmount       decimal.Decimal `json:"co_amount"`
	Encumbered     decimal.Decimal `json:"encumbered"`
	YearEndBalance decimal.Decimal `json:"year_end_balance"`
	BegBalance     decimal.Decimal `json:"beg_balance"`
	FyBegDate      time.Time       `json:"fy_beg_date" validate:"required"`
	FyEndDate      time.Time       `json:"fy_end_date" validate:"required"`
}

func (input *NewCarryover) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.FyEndDate.Before(input.FyBegDate) {
		return utils.NewValidationError("fy_end_date", "fiscal year end is before fiscal year beginning")
	}
	tx := config.GetDB().WithContext(ctx)
	if err := requireRef[Fund](tx, "fund_id", "fund", input.FundId); err != nil {
		return err
	}
	return requireRef[Dept](tx, "dept_id", "dept", input.DeptId)
}

func (input *NewCarryover) fields() map[string]interface{} {
	return map[string]interface{}{
		"fund_id":          input.FundId,
		"dept_id":          input.DeptId,
		"fy":               input.Fy,
		"co_amount":        utils.RoundCents(input.CoAmount),
		"encumbered":       utils.RoundCents(input.Encumbered),
		"year_end_balance": utils.RoundCents(input.YearEndBalance),
		"beg_balance":      utils.RoundCents(input.BegBalance),
		"fy_beg_date":      utils.DateOnly(input.FyBegDate),
		"fy_end_date":      utils.DateOnly(input.FyEndDate),
	}
}

func CreateCarryover(ctx context.Context, input *NewCarryover) (*Carryover, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	carryover := Carryover{
		FundId:         input.FundId,
		DeptId:         input.DeptId,
		Fy:             input.Fy,
		CoAmount:       utils.RoundCents(input.CoAmount),
		Encumbered:     utils.RoundCents(input.Encumbered),
		YearEndBalance: utils.RoundCents(input.YearEndBalance),
		BegBalance:     utils.RoundCents(input.BegBalance),
		FyBegDate:      utils.DateOnly(input.FyBegDate),
		FyEndDate:      utils.DateOnly(input.FyEndDate),
	}
	if err := config.GetDB().WithContext(ctx).Create(&carryover).Error; err != nil {
		return nil, err
	}
	return &carryover, nil
}

func UpdateCarryover(ctx context.Context, id int, input *NewCarryover) (*Carryover, error) {
	carryover, err := utils.FetchModel[Carryover](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(carryover).Updates(input.fields()).Error; err != nil {
		return nil, err
	}
	return carryover, nil
}

func DeleteCarryover(ctx context.Context, id int) (*Carryover, error) {
	carryover, err := utils.FetchModel[Carryover](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(carryover).Error; err != nil {
		return nil, err
	}
	return carryover, nil
}

func GetCarryover(ctx context.Context, id int) (*Carryover, error) {
	return utils.FetchModel[Carryover](ctx, id)
}

func ListCarryovers(ctx context.Context, fundId string, fy int) ([]*Carryover, error) {
	return utils.FetchAllModels[Carryover](ctx, func(db *gorm.DB) *gorm.DB {
		if fundId != "" {
			db = db.Where("fund_id = ?", fundId)
		}
		if fy > 0 {
			db = db.Where("fy = ?", fy)
		}
		return db
	})
}
