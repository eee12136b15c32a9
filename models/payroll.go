package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Payroll is one imported time entry. pay_amount mirrors the Expense it produced
// and expense_full_id is that Expense's dedup key.
type Payroll struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BegDate       time.Time       `gorm:"type:date;not null" json:"beg_date"`
	EndDate       time.Time       `gorm:"type:date;not null" json:"end_date"`
	EmployeeId    int             `gorm:"index;not null" json:"employee_id"`
	ActivityId    int             `gorm:"index;not null" json:"activity_id"`
	Hours         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"hours"`
	PayAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"pay_amount"`
	PayPeriodId   string          `gorm:"size:7;index;not null" json:"pay_period_id"`
	ExpenseFullId string          `gorm:"size:50;uniqueIndex;not null" json:"expense_full_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecordPayrollTx stores the payroll row for the entry's dedup key unless it already exists.
// It reports whether a row was created.
func RecordPayrollTx(tx *gorm.DB, entry Payroll) (*Payroll, bool, error) {
	var existing Payroll
	res := tx.Where("expense_full_id = ?", entry.ExpenseFullId).Limit(1).Find(&existing)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &existing, false, nil
	}
	payroll := entry
	if err := tx.Create(&payroll).Error; err != nil {
		return nil, false, err
	}
	return &payroll, true, nil
}

func GetPayroll(ctx context.Context, id int) (*Payroll, error) {
	return utils.FetchModel[Payroll](ctx, id)
}

func ListPayrolls(ctx context.Context, payPeriodId string, employeeId int) ([]*Payroll, error) {
	return utils.FetchAllModels[Payroll](ctx, func(db *gorm.DB) *gorm.DB {
		if payPeriodId != "" {
			db = db.Where("pay_period_id = ?", payPeriodId)
		}
		if employeeId > 0 {
			db = db.Where("employee_id = ?", employeeId)
		}
		return db
	})
}
