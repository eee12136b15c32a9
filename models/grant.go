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

type Grant struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	FundId          string          `gorm:"size:20;index;not null" json:"fund_id"`
	Year            int             `gorm:"index;not null" json:"year"`
	Cfda            string          `gorm:"size:20" json:"cfda"`
	ProgramName     string          `gorm:"size:150" json:"program_name"`
	AwardAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"award_amount"`
	PtNo            string          `gorm:"size:8" json:"pt_no"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
	BegDate         time.Time       `gorm:"type:date" json:"beg_date"`
	EndDate         time.Time       `gorm:"type:date" json:"end_date"`
	Fsid            string          `gorm:"size:10" json:"fsid"`
	Funder          string          `gorm:"size:50" json:"funder"`
	MaxRevenueLines int             `gorm:"not null;default:1" json:"max_revenue_lines"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGrant struct {
	Name            string          `json:"name" validate:"required,max=100"`
	FundId          string          `json:"fund_id" validate:"required"`
	Year            int             `json:"year" validate:"required,gte=2000,lte=2100"`
	Cfda            string          `json:"cfda" validate:"max=20"`
	ProgramName     string          `json:"program_name" validate:"max=150"`
	AwardAmount     decimal.Decimal `json:"award_amount"`
	PtNo            string          `json:"pt_no" validate:"max=8"`
	Active          *bool           `json:"active"`
	BegDate         time.Time       `json:"beg_date"`
	EndDate         time.Time       `json:"end_date"`
	Fsid            string          `json:"fsid" validate:"max=10"`
	Funder          string          `json:"funder" validate:"max=50"`
	MaxRevenueLines *int            `json:"max_revenue_lines"`
}

func (input *NewGrant) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.AwardAmount.IsNegative() {
		return utils.NewValidationError("award_amount", "award amount cannot be negative")
	}
	if !input.BegDate.IsZero() && !input.EndDate.IsZero() && input.EndDate.Before(input.BegDate) {
		return utils.NewValidationError("end_date", "end date is before beginning date")
	}
	if input.MaxRevenueLines != nil && *input.MaxRevenueLines < 0 {
		return utils.NewValidationError("max_revenue_lines", "max revenue lines cannot be negative")
	}
	if err := utils.ValidateResourceId[Fund](ctx, input.FundId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.NewIntegrityError("fund_id", "fund", input.FundId, "")
		}
		return err
	}
	return nil
}

func (input *NewGrant) apply(grant *Grant) {
	grant.Name = input.Name
	grant.FundId = input.FundId
	grant.Year = input.Year
	grant.Cfda = input.Cfda
	grant.ProgramName = input.ProgramName
	grant.AwardAmount = input.AwardAmount.Round(2)
	grant.PtNo = input.PtNo
	grant.BegDate = utils.DateOnly(input.BegDate)
	grant.EndDate = utils.DateOnly(input.EndDate)
	grant.Fsid = input.Fsid
	grant.Funder = input.Funder
	if input.Active != nil {
		grant.Active = *input.Active
	}
	if input.MaxRevenueLines != nil {
		grant.MaxRevenueLines = *input.MaxRevenueLines
	}
}

func CreateGrant(ctx context.Context, input *NewGrant) (*Grant, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	grant := Grant{Active: true, MaxRevenueLines: 1}
	input.apply(&grant)
	if err := config.GetDB().WithContext(ctx).Create(&grant).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

// UpdateGrant keeps the award above what is already budgeted and the revenue line cap above what exists.
func UpdateGrant(ctx context.Context, id int, input *NewGrant) (*Grant, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	var grant *Grant
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		grant, err = utils.FetchModelForUpdate[Grant](tx, id)
		if err != nil {
			return err
		}
		input.apply(grant)

		var lines []GrantLine
		if err := tx.Where("grant_id = ?", id).Find(&lines).Error; err != nil {
			return err
		}
		budgeted := decimal.Zero
		revenueLines := 0
		for _, l := range lines {
			budgeted = budgeted.Add(l.Budgeted)
			if l.Type == LineTypeRevenue {
				revenueLines++
			}
		}
		if grant.AwardAmount.LessThan(budgeted) {
			return utils.NewValidationError("award_amount", "award amount is less than what is already budgeted")
		}
		if grant.MaxRevenueLines < revenueLines {
			return utils.NewValidationError("max_revenue_lines", "grant already has more revenue lines")
		}
		return tx.Save(grant).Error
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

func DeleteGrant(ctx context.Context, id int) (*Grant, error) {
	grant, err := utils.FetchModel[Grant](ctx, id)
	if err != nil {
		return nil, err
	}
	if count, err := utils.ResourceCountWhere[GrantLine](ctx, "grant_id = ?", id); err != nil {
		return nil, err
	} else if count > 0 {
		return nil, utils.NewValidationError("id", "grant still has grant lines")
	}
	if err := config.GetDB().WithContext(ctx).Delete(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

func GetGrant(ctx context.Context, id int) (*Grant, error) {
	return utils.FetchModel[Grant](ctx, id)
}

func ListGrants(ctx context.Context, activeOnly bool) ([]*Grant, error) {
	return utils.FetchAllModels[Grant](ctx, func(db *gorm.DB) *gorm.DB {
		if activeOnly {
			return db.Where("active = ?", true)
		}
		return db
	})
}
