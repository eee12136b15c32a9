package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

type Expense struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ItemId        int             `gorm:"index;not null" json:"item_id"`
	LineId        string          `gorm:"size:40;index;not null" json:"line_id"`
	FundId        string          `gorm:"size:20;index;not null" json:"fund_id"`
	EmployeeId    int             `gorm:"index;not null" json:"employee_id"`
	PeopleId      int             `gorm:"index;not null" json:"people_id"`
	ActivityId    int             `gorm:"index;not null" json:"activity_id"`
	GrantLineId   *int            `gorm:"index" json:"grant_line_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date          time.Time       `gorm:"type:date;index;not null" json:"date"`
	Warrant       int             `json:"warrant"`
	PaymentType   PaymentType     `gorm:"size:20" json:"payment_type"`
	Comment       string          `gorm:"size:500" json:"comment"`
	ExpenseFullId string          `gorm:"size:50;uniqueIndex;not null" json:"expense_full_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	ItemId        int             `json:"item_id" validate:"required"`
	EmployeeId    int             `json:"employee_id" validate:"required"`
	PeopleId      int             `json:"people_id" validate:"required"`
	ActivityId    int             `json:"activity_id" validate:"required"`
	GrantLineId   *int            `json:"grant_line_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Warrant       int             `json:"warrant"`
	PaymentType   PaymentType     `json:"payment_type"`
	Comment       string          `json:"comment" validate:"max=500"`
	ExpenseFullId string          `json:"expense_full_id" validate:"max=50"`
}

// ExpenseFullID is the dedup key: {employee}-{activity}-{YYYY-MM-DD}-{HH:MM}.
func ExpenseFullID(employeeId int, activityId int, date time.Time, clock time.Time) string {
	return fmt.Sprintf("%d-%d-%s-%s", employeeId, activityId, date.Format("2006-01-02"), clock.Format("15:04"))
}

func (input *NewExpense) validate() error {
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

// PostExpenseTx validates and posts an expense inside the caller's transaction.
// The caller commits or rolls back.
func PostExpenseTx(ctx context.Context, tx *gorm.DB, input *NewExpense) (*Expense, error) {
	ctx, span := tracer.Start(ctx, "PostExpense")
	defer span.End()

	expense, err := postExpense(ctx, tx.WithContext(ctx), input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("expense.id", expense.ID),
		attribute.String("expense.fund_id", expense.FundId),
		attribute.String("expense.amount", expense.Amount.StringFixed(2)),
	)
	return expense, nil
}

func postExpense(ctx context.Context, tx *gorm.DB, input *NewExpense) (*Expense, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	amount := input.Amount.Round(2)
	date := utils.DateOnly(input.Date)
	if date.IsZero() {
		date = utils.Today()
	}
	fullId := input.ExpenseFullId
	if fullId == "" {
		fullId = ExpenseFullID(input.EmployeeId, input.ActivityId, date, utils.Now())
	}

	target, err := lockPostingTarget(tx, input.ItemId, input.GrantLineId)
	if err != nil {
		return nil, err
	}
	if err := target.checkExpense(amount); err != nil {
		return nil, err
	}
	if err := postingRefs(tx, input.EmployeeId, input.PeopleId, input.ActivityId); err != nil {
		return nil, err
	}
	var dup int64
	if err := tx.Model(&Expense{}).Where("expense_full_id = ?", fullId).Count(&dup).Error; err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, utils.NewValidationError("expense_full_id", "duplicate expense "+fullId)
	}

	expense := Expense{
		ItemId:        target.item.ID,
		LineId:        target.line.ID,
		FundId:        target.fund.ID,
		EmployeeId:    input.EmployeeId,
		PeopleId:      input.PeopleId,
		ActivityId:    input.ActivityId,
		GrantLineId:   input.GrantLineId,
		Amount:        amount,
		Date:          date,
		Warrant:       input.Warrant,
		PaymentType:   input.PaymentType,
		Comment:       input.Comment,
		ExpenseFullId: fullId,
	}
	if err := tx.Create(&expense).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, utils.NewValidationError("expense_full_id", "duplicate expense "+fullId)
		}
		return nil, err
	}
	if err := target.applyExpense(tx, amount); err != nil {
		return nil, err
	}
	if err := writeLedgerEvent(ctx, tx, LedgerReferenceTypeExpense, expense.ID, expense.FundId, amount.Neg(), expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	expense, err := PostExpenseTx(ctx, tx, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {
	return utils.FetchModel[Expense](ctx, id)
}

// PostingFilter narrows expense and revenue listings; zero fields are ignored.
type PostingFilter struct {
	FundId     string
	LineId     string
	ItemId     int
	EmployeeId int
	From       time.Time
	To         time.Time
}

func (f PostingFilter) scope(db *gorm.DB) *gorm.DB {
	if f.FundId != "" {
		db = db.Where("fund_id = ?", f.FundId)
	}
	if f.LineId != "" {
		db = db.Where("line_id = ?", f.LineId)
	}
	if f.ItemId > 0 {
		db = db.Where("item_id = ?", f.ItemId)
	}
	if f.EmployeeId > 0 {
		db = db.Where("employee_id = ?", f.EmployeeId)
	}
	if !f.From.IsZero() {
		db = db.Where("date >= ?", utils.DateOnly(f.From))
	}
	if !f.To.IsZero() {
		db = db.Where("date <= ?", utils.DateOnly(f.To))
	}
	return db
}

func ListExpenses(ctx context.Context, filter PostingFilter) ([]*Expense, error) {
	return utils.FetchAllModels[Expense](ctx, filter.scope)
}

// ExistingExpenseKeys returns which of keys are already posted.
func ExistingExpenseKeys(tx *gorm.DB, keys []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(keys) == 0 {
		return existing, nil
	}
	var found []string
	if err := tx.Model(&Expense{}).Where("expense_full_id IN ?", keys).Pluck("expense_full_id", &found).Error; err != nil {
		return nil, err
	}
	for _, k := range found {
		existing[k] = true
	}
	return existing, nil
}
