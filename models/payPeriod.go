package models

import (
	"context"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

const msgNoPayPeriod = "No payperiod for this date range"

type PayPeriod struct {
	ID          string    `gorm:"primaryKey;size:7" json:"id"`
	PeriodStart time.Time `gorm:"type:date;not null;index" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date;not null" json:"period_end"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayPeriod struct {
	ID          string    `json:"id" validate:"required,max=7"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

// Contains reports whether [beg, end] falls inside the period, both ends inclusive.
func (p *PayPeriod) Contains(beg time.Time, end time.Time) bool {
	beg, end = utils.DateOnly(beg), utils.DateOnly(end)
	return !beg.Before(utils.DateOnly(p.PeriodStart)) && !end.After(utils.DateOnly(p.PeriodEnd))
}

func (input *NewPayPeriod) validate() error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return utils.NewValidationError("period_end", "period end is before period start")
	}
	return nil
}

func CreatePayPeriod(ctx context.Context, input *NewPayPeriod) (*PayPeriod, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[PayPeriod](ctx, "id", input.ID, nil); err != nil {
		return nil, err
	}
	period := PayPeriod{
		ID:          input.ID,
		PeriodStart: utils.DateOnly(input.PeriodStart),
		PeriodEnd:   utils.DateOnly(input.PeriodEnd),
	}
	if err := config.GetDB().WithContext(ctx).Create(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func UpdatePayPeriod(ctx context.Context, id string, input *NewPayPeriod) (*PayPeriod, error) {
	period, err := utils.FetchModel[PayPeriod](ctx, id)
	if err != nil {
		return nil, err
	}
	input.ID = id
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(period).Updates(map[string]interface{}{
		"period_start": utils.DateOnly(input.PeriodStart),
		"period_end":   utils.DateOnly(input.PeriodEnd),
	}).Error; err != nil {
		return nil, err
	}
	return period, nil
}

func DeletePayPeriod(ctx context.Context, id string) (*PayPeriod, error) {
	period, err := utils.FetchModel[PayPeriod](ctx, id)
	if err != nil {
		return nil, err
	}
	if count, err := utils.ResourceCountWhere[Payroll](ctx, "pay_period_id = ?", id); err != nil {
		return nil, err
	} else if count > 0 {
		return nil, utils.NewValidationError("id", "pay period has payroll")
	}
	if err := config.GetDB().WithContext(ctx).Delete(period).Error; err != nil {
		return nil, err
	}
	return period, nil
}

func GetPayPeriod(ctx context.Context, id string) (*PayPeriod, error) {
	return utils.FetchModel[PayPeriod](ctx, id)
}

func ListPayPeriods(ctx context.Context) ([]*PayPeriod, error) {
	return utils.FetchAllModels[PayPeriod](ctx)
}

// MatchPayPeriod picks the first period, by start date, that covers [beg, end].
func MatchPayPeriod(periods []PayPeriod, beg time.Time, end time.Time) (*PayPeriod, error) {
	for i := range periods {
		if periods[i].Contains(beg, end) {
			return &periods[i], nil
		}
	}
	return nil, utils.NewValidationError("pay_period", msgNoPayPeriod)
}

// LoadPayPeriodsTx returns every pay period ordered by start date.
func LoadPayPeriodsTx(tx *gorm.DB) ([]PayPeriod, error) {
	var periods []PayPeriod
	if err := tx.Order("period_start").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}
