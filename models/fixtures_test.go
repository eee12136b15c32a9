package models_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

// setupDB points config at a fresh sqlite file for the duration of the test.
func setupDB(t *testing.T) context.Context {
	t.Helper()
	conn, err := config.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	prev := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
		config.SetDB(prev)
	})
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return context.Background()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ledger is a fund with the reference rows every posting needs.
type ledger struct {
	fund     *models.Fund
	dept     *models.Dept
	employee *models.Employee
	people   *models.People
	activity *models.Activity
}

func newLedger(t *testing.T, ctx context.Context, cash string) *ledger {
	t.Helper()
	dept, err := models.CreateDept(ctx, &models.NewDept{Name: "Nursing"})
	if err != nil {
		t.Fatalf("create dept: %v", err)
	}
	fund, err := models.CreateFund(ctx, &models.NewFund{Code: "001", Year: 2024, Name: "General Health", CashBalance: dec(cash)})
	if err != nil {
		t.Fatalf("create fund: %v", err)
	}
	people, err := models.CreatePeople(ctx, &models.NewPeople{Name: "Acme Supply"})
	if err != nil {
		t.Fatalf("create people: %v", err)
	}
	employee, err := models.CreateEmployee(ctx, &models.NewEmployee{ID: 101, FirstName: "Ada", Surname: "Lane", PayRate: dec("20")})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return &ledger{fund: fund, dept: dept, employee: employee, people: people}
}

func (l *ledger) line(t *testing.T, ctx context.Context, code string, lineType models.LineType, budgeted string) *models.Line {
	t.Helper()
	line, err := models.CreateLine(ctx, &models.NewLine{FundId: l.fund.ID, Code: code, Name: "Line " + code, Type: lineType, Budgeted: dec(budgeted)})
	if err != nil {
		t.Fatalf("create line %s: %v", code, err)
	}
	return line
}

func (l *ledger) item(t *testing.T, ctx context.Context, line *models.Line) *models.Item {
	t.Helper()
	item, err := models.CreateItem(ctx, &models.NewItem{Name: "Item " + line.Code, LineId: line.ID})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if l.activity == nil {
		l.activity, err = models.CreateActivity(ctx, &models.NewActivity{Program: "Clinic", DeptId: l.dept.ID, FundId: l.fund.ID, ItemId: item.ID})
		if err != nil {
			t.Fatalf("create activity: %v", err)
		}
	}
	return item
}

// expense posts with an explicit dedup key so several postings can land in the same minute.
func (l *ledger) expense(ctx context.Context, item *models.Item, amount string, key string, grantLineId *int) (*models.Expense, error) {
	return models.CreateExpense(ctx, &models.NewExpense{
		ItemId:        item.ID,
		EmployeeId:    l.employee.ID,
		PeopleId:      l.people.ID,
		ActivityId:    l.activity.ID,
		GrantLineId:   grantLineId,
		Amount:        dec(amount),
		ExpenseFullId: key,
	})
}

func (l *ledger) revenue(ctx context.Context, item *models.Item, amount string, grantLineId *int) (*models.Revenue, error) {
	return models.CreateRevenue(ctx, &models.NewRevenue{
		ItemId:      item.ID,
		EmployeeId:  l.employee.ID,
		PeopleId:    l.people.ID,
		ActivityId:  l.activity.ID,
		GrantLineId: grantLineId,
		Amount:      dec(amount),
	})
}

func fieldMessage(t *testing.T, err error, field string) string {
	t.Helper()
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %T: %v", err, err)
	}
	return ve.Message(field)
}
