package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Activity is a program staff time is charged to.
type Activity struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Program   string    `gorm:"size:100;not null;uniqueIndex" json:"program"`
	DeptId    int       `gorm:"index;not null" json:"dept_id"`
	FundId    string    `gorm:"size:20;index;not null" json:"fund_id"`
	ItemId    int       `gorm:"index;not null" json:"item_id"`
	RevGen    bool      `gorm:"not null;default:false" json:"rev_gen"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	Fphs      string    `gorm:"size:20" json:"fphs"`
	PayType   PayType   `gorm:"size:10;not null;default:'general'" json:"pay_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewActivity struct {
	Program string  `json:"program" validate:"required,max=100"`
	DeptId  int     `json:"dept_id" validate:"required"`
	FundId  string  `json:"fund_id" validate:"required"`
	ItemId  int     `json:"item_id" validate:"required"`
	RevGen  bool    `json:"rev_gen"`
	Active  *bool   `json:"active"`
	Fphs    string  `json:"fphs" validate:"max=20"`
	PayType PayType `json:"pay_type"`
}

func (input *NewActivity) validate(ctx context.Context, id int) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.PayType == "" {
		input.PayType = PayTypeGeneral
	}
	if !input.PayType.IsValid() {
		return utils.NewValidationError("pay_type", "pay type must be general, admin or special")
	}
	if err := utils.ValidateUnique[Activity](ctx, "program", input.Program, id); err != nil {
		return err
	}
	if err := utils.ValidateOptionalResourceId[Dept](ctx, "dept_id", "dept", &input.DeptId); err != nil {
		return err
	}
	if err := utils.ValidateOptionalResourceId[Item](ctx, "item_id", "item", &input.ItemId); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Fund](ctx, input.FundId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.NewIntegrityError("fund_id", "fund", input.FundId, "")
		}
		return err
	}
	return nil
}

func (input *NewActivity) apply(a *Activity) {
	a.Program = strings.TrimSpace(input.Program)
	a.DeptId = input.DeptId
	a.FundId = input.FundId
	a.ItemId = input.ItemId
	a.RevGen = input.RevGen
	a.Fphs = input.Fphs
	a.PayType = input.PayType
	if input.Active != nil {
		a.Active = *input.Active
	}
}

func CreateActivity(ctx context.Context, input *NewActivity) (*Activity, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	activity := Activity{Active: true}
	input.apply(&activity)
	if err := config.GetDB().WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func UpdateActivity(ctx context.Context, id int, input *NewActivity) (*Activity, error) {
	activity, err := utils.FetchModel[Activity](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	input.apply(activity)
	if err := config.GetDB().WithContext(ctx).Save(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

func DeleteActivity(ctx context.Context, id int) (*Activity, error) {
	activity, err := utils.FetchModel[Activity](ctx, id)
	if err != nil {
		return nil, err
	}
	for _, check := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Expense](ctx, "activity_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Revenue](ctx, "activity_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Payroll](ctx, "activity_id = ?", id) },
	} {
		count, err := check()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("id", "activity has postings or payroll")
		}
	}
	if err := config.GetDB().WithContext(ctx).Delete(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

func GetActivity(ctx context.Context, id int) (*Activity, error) {
	return utils.FetchModel[Activity](ctx, id)
}

func ListActivities(ctx context.Context, activeOnly bool) ([]*Activity, error) {
	return utils.FetchAllModels[Activity](ctx, func(db *gorm.DB) *gorm.DB {
		if activeOnly {
			return db.Where("active = ?", true)
		}
		return db
	})
}

// FindActivityByProgram resolves a payroll file's activity column inside tx.
func FindActivityByProgram(tx *gorm.DB, program string) (*Activity, error) {
	var activity Activity
	err := tx.Where("program = ?", strings.TrimSpace(program)).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewIntegrityError("activity", "activity", program, "")
		}
		return nil, err
	}
	return &activity, nil
}
