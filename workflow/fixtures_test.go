package workflow_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
)

func setupDB(t *testing.T) context.Context {
	t.Helper()
	conn, err := config.OpenSQLite(filepath.Join(t.TempDir(), "workflow.db"))
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

// payrollLedger is a fund with one expense line, the "Clinic" activity charging it,
// and employee Ada Lane with a matching payee.
type payrollLedger struct {
	fund     *models.Fund
	line     *models.Line
	employee *models.Employee
}

func newPayrollLedger(t *testing.T, ctx context.Context) *payrollLedger {
	t.Helper()
	dept, err := models.CreateDept(ctx, &models.NewDept{Name: "Nursing"})
	if err != nil {
		t.Fatalf("create dept: %v", err)
	}
	fund, err := models.CreateFund(ctx, &models.NewFund{Code: "001", Year: 2024, Name: "General Health", CashBalance: dec("10000")})
	if err != nil {
		t.Fatalf("create fund: %v", err)
	}
	line, err := models.CreateLine(ctx, &models.NewLine{FundId: fund.ID, Code: "110", Name: "Salaries", Type: models.LineTypeExpense, Budgeted: dec("5000")})
	if err != nil {
		t.Fatalf("create line: %v", err)
	}
	item, err := models.CreateItem(ctx, &models.NewItem{Name: "Nurse wages", LineId: line.ID})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := models.CreateActivity(ctx, &models.NewActivity{Program: "Clinic", DeptId: dept.ID, FundId: fund.ID, ItemId: item.ID}); err != nil {
		t.Fatalf("create activity: %v", err)
	}
	employee, err := models.CreateEmployee(ctx, &models.NewEmployee{ID: 101, FirstName: "Ada", Surname: "Lane", PayRate: dec("20")})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if _, err := models.CreatePeople(ctx, &models.NewPeople{Name: "Ada Lane"}); err != nil {
		t.Fatalf("create people: %v", err)
	}
	if _, err := models.CreatePayPeriod(ctx, &models.NewPayPeriod{
		ID:          "2024-14",
		PeriodStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create pay period: %v", err)
	}
	return &payrollLedger{fund: fund, line: line, employee: employee}
}
