package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/utils"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("budget-ledger")

const (
	msgLineBudgetExceeded      = "amount exceeds line budget remaining"
	msgGrantLineBudgetExceeded = "amount exceeds grant line budget remaining"
	msgFundCashExceeded        = "amount exceeds fund cash balance"
	msgGrantLineNotExpense     = "grant line must be an expense line"
	msgGrantLineNotRevenue     = "grant line must be a revenue line"
	msgItemNotExpense          = "item must belong to an expense line"
	msgItemNotRevenue          = "item must belong to a revenue line"
)

// postingTarget is every row a posting touches, locked in Fund, Line, Grant, GrantLine order.
type postingTarget struct {
	item      *Item
	fund      *Fund
	line      *Line
	grant     *Grant
	grantLine *GrantLine
}

func lockPostingTarget(tx *gorm.DB, itemId int, grantLineId *int) (*postingTarget, error) {
	item, err := utils.FetchModelTx[Item](tx, itemId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("item_id", "item", strconv.Itoa(itemId), "")
		}
		return nil, err
	}
	unlockedLine, err := utils.FetchModelTx[Line](tx, item.LineId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("item_id", "line", item.LineId, "item has no line")
		}
		return nil, err
	}

	target := postingTarget{item: item}
	if target.fund, err = utils.FetchModelForUpdate[Fund](tx, unlockedLine.FundId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("item_id", "fund", unlockedLine.FundId, "line has no fund")
		}
		return nil, err
	}
	if target.line, err = utils.FetchModelForUpdate[Line](tx, unlockedLine.ID); err != nil {
		return nil, err
	}
	if grantLineId == nil {
		return &target, nil
	}

	unlockedGrantLine, err := utils.FetchModelTx[GrantLine](tx, *grantLineId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("grant_line_id", "grant line", strconv.Itoa(*grantLineId), "")
		}
		return nil, err
	}
	if target.grant, err = utils.FetchModelForUpdate[Grant](tx, unlockedGrantLine.GrantId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewIntegrityError("grant_line_id", "grant", strconv.Itoa(unlockedGrantLine.GrantId), "grant line has no grant")
		}
		return nil, err
	}
	if target.grantLine, err = utils.FetchModelForUpdate[GrantLine](tx, *grantLineId); err != nil {
		return nil, err
	}
	return &target, nil
}

// checkExpense runs the upper-bound checks against the locked rows.
func (t *postingTarget) checkExpense(amount decimal.Decimal) error {
	if t.line.Type != LineTypeExpense {
		return utils.NewValidationError("item_id", msgItemNotExpense)
	}
	if t.grantLine != nil {
		if t.grantLine.Type != LineTypeExpense {
			return utils.NewValidationError("grant_line_id", msgGrantLineNotExpense)
		}
		if amount.GreaterThan(t.grantLine.Budgeted.Sub(t.grantLine.BudgetSpent)) {
			return utils.NewValidationError("amount", msgGrantLineBudgetExceeded)
		}
	}
	if amount.GreaterThan(t.line.Budgeted.Sub(t.line.BudgetSpent)) {
		return utils.NewValidationError("amount", msgLineBudgetExceeded)
	}
	if amount.GreaterThan(t.fund.CashBalance) {
		return utils.NewValidationError("amount", msgFundCashExceeded)
	}
	return nil
}

func (t *postingTarget) checkRevenue() error {
	if t.line.Type != LineTypeRevenue {
		return utils.NewValidationError("item_id", msgItemNotRevenue)
	}
	if t.grantLine != nil && t.grantLine.Type != LineTypeRevenue {
		return utils.NewValidationError("grant_line_id", msgGrantLineNotRevenue)
	}
	return nil
}

// applyExpense moves the counters and cash for an expense of amount.
func (t *postingTarget) applyExpense(tx *gorm.DB, amount decimal.Decimal) error {
	t.line.BudgetSpent = t.line.BudgetSpent.Add(amount)
	if err := tx.Model(&Line{}).Where("id = ?", t.line.ID).Update("budget_spent", t.line.BudgetSpent).Error; err != nil {
		return err
	}
	if t.grantLine != nil {
		t.grantLine.BudgetSpent = t.grantLine.BudgetSpent.Add(amount)
		if err := tx.Model(&GrantLine{}).Where("id = ?", t.grantLine.ID).Update("budget_spent", t.grantLine.BudgetSpent).Error; err != nil {
			return err
		}
	}
	t.fund.CashBalance = t.fund.CashBalance.Sub(amount)
	return tx.Model(&Fund{}).Where("id = ?", t.fund.ID).Update("cash_balance", t.fund.CashBalance).Error
}

func (t *postingTarget) applyRevenue(tx *gorm.DB, amount decimal.Decimal) error {
	t.line.TotalIncome = t.line.TotalIncome.Add(amount)
	if err := tx.Model(&Line{}).Where("id = ?", t.line.ID).Update("total_income", t.line.TotalIncome).Error; err != nil {
		return err
	}
	if t.grantLine != nil {
		t.grantLine.TotalIncome = t.grantLine.TotalIncome.Add(amount)
		if err := tx.Model(&GrantLine{}).Where("id = ?", t.grantLine.ID).Update("total_income", t.grantLine.TotalIncome).Error; err != nil {
			return err
		}
	}
	t.fund.CashBalance = t.fund.CashBalance.Add(amount)
	return tx.Model(&Fund{}).Where("id = ?", t.fund.ID).Update("cash_balance", t.fund.CashBalance).Error
}

// requireRef fails with an IntegrityError when no T row has the id.
func requireRef[T any](tx *gorm.DB, field string, entity string, id interface{}) error {
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.NewIntegrityError(field, entity, fmt.Sprint(id), "")
	}
	return nil
}

// postingRefs checks the employee, people and activity a posting names.
func postingRefs(tx *gorm.DB, employeeId int, peopleId int, activityId int) error {
	if err := requireRef[Employee](tx, "employee_id", "employee", employeeId); err != nil {
		return err
	}
	if err := requireRef[People](tx, "people_id", "people", peopleId); err != nil {
		return err
	}
	return requireRef[Activity](tx, "activity_id", "activity", activityId)
}
