package models

import (
	"context"
	"errors"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Item tags postings inside a Line.
// FundId, FundType and FundYear are copied from the line's fund at creation and never refreshed.
type Item struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	LineId    string    `gorm:"size:40;index;not null" json:"line_id"`
	FundId    string    `gorm:"size:20;index;not null" json:"fund_id"`
	FundType  string    `gorm:"size:50" json:"fund_type"`
	FundYear  int       `gorm:"index;not null" json:"fund_year"`
	LineItem  string    `gorm:"size:255" json:"line_item"`
	Category  string    `gorm:"size:50" json:"category"`
	FeeBased  bool      `gorm:"not null;default:false" json:"fee_based"`
	Month     int       `gorm:"not null;default:0" json:"month"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Name     string `json:"name" validate:"required,max=255"`
	LineId   string `json:"line_id" validate:"required"`
	LineItem string `json:"line_item" validate:"max=255"`
	Category string `json:"category" validate:"max=50"`
	FeeBased bool   `json:"fee_based"`
	Month    int    `json:"month" validate:"min=0,max=12"`
}

// UpdateItemInput leaves the line and fund snapshot alone.
type UpdateItemInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	LineItem string `json:"line_item" validate:"max=255"`
	Category string `json:"category" validate:"max=50"`
	FeeBased bool   `json:"fee_based"`
	Month    int    `json:"month" validate:"min=0,max=12"`
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	line, err := utils.FetchModel[Line](ctx, input.LineId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("line_id", "line", input.LineId, "")
		}
		return nil, err
	}
	fund, err := utils.FetchModel[Fund](ctx, line.FundId)
	if err != nil {
		return nil, err
	}

	item := Item{
		Name:     input.Name,
		LineId:   line.ID,
		FundId:   fund.ID,
		FundType: fund.Sof,
		FundYear: fund.Year,
		LineItem: input.LineItem,
		Category: input.Category,
		FeeBased: input.FeeBased,
		Month:    input.Month,
	}
	if err := config.GetDB().WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateItem(ctx context.Context, id int, input *UpdateItemInput) (*Item, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"name":      input.Name,
		"line_item": input.LineItem,
		"category":  input.Category,
		"fee_based": input.FeeBased,
		"month":     input.Month,
	}).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func DeleteItem(ctx context.Context, id int) (*Item, error) {
	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}
	for _, check := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Expense](ctx, "item_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Revenue](ctx, "item_id = ?", id) },
	} {
		count, err := check()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("id", "item has postings")
		}
	}
	if err := config.GetDB().WithContext(ctx).Delete(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func GetItem(ctx context.Context, id int) (*Item, error) {
	return utils.FetchModel[Item](ctx, id)
}

func ListItems(ctx context.Context, lineId string, year int) ([]*Item, error) {
	return utils.FetchAllModels[Item](ctx, func(db *gorm.DB) *gorm.DB {
		if lineId != "" {
			db = db.Where("line_id = ?", lineId)
		}
		if year > 0 {
			db = db.Where("fund_year = ?", year)
		}
		return db
	})
}
