package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

type Revenue struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ItemId      int             `gorm:"index;not null" json:"item_id"`
	LineId      string          `gorm:"size:40;index;not null" json:"line_id"`
	FundId      string          `gorm:"size:20;index;not null" json:"fund_id"`
	EmployeeId  int             `gorm:"index;not null" json:"employee_id"`
	PeopleId    int             `gorm:"index;not null" json:"people_id"`
	ActivityId  int             `gorm:"index;not null" json:"activity_id"`
	GrantLineId *int            `gorm:"index" json:"grant_line_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date        time.Time       `gorm:"type:date;index;not null" json:"date"`
	Reference   int             `json:"reference"`
	PaymentType PaymentType     `gorm:"size:20" json:"payment_type"`
	Comment     string          `gorm:"size:500" json:"comment"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRevenue struct {
	ItemId      int             `json:"item_id" validate:"required"`
	EmployeeId  int             `json:"employee_id" validate:"required"`
	PeopleId    int             `json:"people_id" validate:"required"`
	ActivityId  int             `json:"activity_id" validate:"required"`
	GrantLineId *int            `json:"grant_line_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Reference   int             `json:"reference"`
	PaymentType PaymentType     `json:"payment_type"`
	Comment     string          `json:"comment" validate:"max=500"`
}

func (input *NewRevenue) validate() error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "amount must be greater than zero")
	}
	if input.PaymentType != "" && !input.PaymentType.IsValid() {
		return utils.NewValidationError("payment_type", "payment type must be Cash, Card or Check")
	}
	return nil
}

// PostRevenueTx validates and posts a revenue inside the caller's transaction.
func PostRevenueTx(ctx context.Context, tx *gorm.DB, input *NewRevenue) (*Revenue, error) {
	ctx, span := tracer.Start(ctx, "PostRevenue")
	defer span.End()

	revenue, err := postRevenue(ctx, tx.WithContext(ctx), input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("revenue.id", revenue.ID),
		attribute.String("revenue.fund_id", revenue.FundId),
		attribute.String("revenue.amount", revenue.Amount.StringFixed(2)),
	)
	return revenue, nil
}

func postRevenue(ctx context.Context, tx *gorm.DB, input *NewRevenue) (*Revenue, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	amount := input.Amount.Round(2)
	date := utils.DateOnly(input.Date)
	if date.IsZero() {
		date = utils.Today()
	}

	target, err := lockPostingTarget(tx, input.ItemId, input.GrantLineId)
	if err != nil {
		return nil, err
	}
	if err := target.checkRevenue(); err != nil {
		return nil, err
	}
	if err := postingRefs(tx, input.EmployeeId, input.PeopleId, input.ActivityId); err != nil {
		return nil, err
	}

	revenue := Revenue{
		ItemId:      target.item.ID,
		LineId:      target.line.ID,
		FundId:      target.fund.ID,
		EmployeeId:  input.EmployeeId,
		PeopleId:    input.PeopleId,
		ActivityId:  input.ActivityId,
		GrantLineId: input.GrantLineId,
		Amount:      amount,
		Date:        date,
		Reference:   input.Reference,
		PaymentType: input.PaymentType,
		Comment:     input.Comment,
	}
	if err := tx.Create(&revenue).Error; err != nil {
		return nil, err
	}
	if err := target.applyRevenue(tx, amount); err != nil {
		return nil, err
	}
	if err := writeLedgerEvent(ctx, tx, LedgerReferenceTypeRevenue, revenue.ID, revenue.FundId, amount, revenue); err != nil {
		return nil, err
	}
	return &revenue, nil
}

func CreateRevenue(ctx context.Context, input *NewRevenue) (*Revenue, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	revenue, err := PostRevenueTx(ctx, tx, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return revenue, nil
}

func GetRevenue(ctx context.Context, id int) (*Revenue, error) {
	return utils.FetchModel[Revenue](ctx, id)
}

func ListRevenues(ctx context.Context, filter PostingFilter) ([]*Revenue, error) {
	return utils.FetchAllModels[Revenue](ctx, filter.scope)
}
