package models

import (
	"context"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
)

type Dept struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDept struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (input *NewDept) validate(ctx context.Context, id int) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	return utils.ValidateUnique[Dept](ctx, "name", input.Name, id)
}

func CreateDept(ctx context.Context, input *NewDept) (*Dept, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	dept := Dept{Name: input.Name}
	if err := config.GetDB().WithContext(ctx).Create(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func UpdateDept(ctx context.Context, id int, input *NewDept) (*Dept, error) {
	dept, err := utils.FetchModel[Dept](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(dept).Updates(map[string]interface{}{
		"name": input.Name,
	}).Error; err != nil {
		return nil, err
	}
	return dept, nil
}

func DeleteDept(ctx context.Context, id int) (*Dept, error) {
	dept, err := utils.FetchModel[Dept](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(dept).Error; err != nil {
		return nil, err
	}
	return dept, nil
}

func GetDept(ctx context.Context, id int) (*Dept, error) {
	return utils.FetchModel[Dept](ctx, id)
}

func ListDepts(ctx context.Context) ([]*Dept, error) {
	return utils.FetchAllModels[Dept](ctx)
}
