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
	VariableInsuranceRate1 = "insuranceRate1"
	VariableInsuranceRate2 = "insuranceRate2"
)

// Variable holds a named rate used by the benefits calculation.
type Variable struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Value     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"value"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVariable struct {
	Name  string          `json:"name" validate:"required,max=50"`
	Value decimal.Decimal `json:"value"`
}

func CreateVariable(ctx context.Context, input *NewVariable) (*Variable, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Variable](ctx, "name", input.Name, nil); err != nil {
		return nil, err
	}
	variable := Variable{Name: input.Name, Value: input.Value}
	if err := config.GetDB().WithContext(ctx).Create(&variable).Error; err != nil {
		return nil, err
	}
	return &variable, nil
}

func UpdateVariable(ctx context.Context, id int, input *NewVariable) (*Variable, error) {
	variable, err := utils.FetchModel[Variable](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Variable](ctx, "name", input.Name, id); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(variable).Updates(map[string]interface{}{
		"name":  input.Name,
		"value": input.Value,
	}).Error; err != nil {
		return nil, err
	}
	return variable, nil
}

func DeleteVariable(ctx context.Context, id int) (*Variable, error) {
	variable, err := utils.FetchModel[Variable](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(variable).Error; err != nil {
		return nil, err
	}
	return variable, nil
}

func GetVariable(ctx context.Context, id int) (*Variable, error) {
	return utils.FetchModel[Variable](ctx, id)
}

func ListVariables(ctx context.Context) ([]*Variable, error) {
	return utils.FetchAllModels[Variable](ctx)
}

// VariableValue returns zero when the variable has not been set.
func VariableValue(ctx context.Context, name string) (decimal.Decimal, error) {
	var variable Variable
	err := config.GetDB().WithContext(ctx).Where("name = ?", name).First(&variable).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return variable.Value, nil
}
