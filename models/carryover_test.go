package models_test

import (
	"testing"
	"time"

	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

func TestCreateCarryover_ChecksFundAndDates(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	input := models.NewCarryover{
		FundId:     l.fund.ID,
		DeptId:     l.dept.ID,
		Fy:         2023,
		CoAmount:   dec("120.456"),
		BegBalance: dec("900"),
		FyBegDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		FyEndDate:  time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	carryover, err := models.CreateCarryover(ctx, &input)
	if err != nil {
		t.Fatalf("create carryover: %v", err)
	}
	if !carryover.CoAmount.Equal(dec("120.46")) {
		t.Fatalf("expected amount rounded to cents, got %s", carryover.CoAmount)
	}

	missingFund := input
	missingFund.FundId = "1999-999"
	if _, err := models.CreateCarryover(ctx, &missingFund); !utils.IsIntegrityError(err) {
		t.Fatalf("expected integrity error for unknown fund, got %v", err)
	}

	backwards := input
	backwards.FyEndDate = time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	_, err = models.CreateCarryover(ctx, &backwards)
	if msg := fieldMessage(t, err, "fy_end_date"); msg == "" {
		t.Fatalf("expected fy_end_date message, got %v", err)
	}

	list, err := models.ListCarryovers(ctx, l.fund.ID, 2023)
	if err != nil {
		t.Fatalf("list carryovers: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 carryover, got %d", len(list))
	}
}

func TestBudgetActions_ValidateAndFilterByApproval(t *testing.T) {
	ctx := setupDB(t)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	if _, err := models.CreateBudgetAction(ctx, &models.NewBudgetAction{Date: date, FssfFrom: "001-110", FssfTo: "001-110", Amount: dec("10"), FsResNo: 1}); err == nil {
		t.Fatalf("expected a transfer to the same account to be rejected")
	}
	_, err := models.CreateBudgetAction(ctx, &models.NewBudgetAction{Date: date, FssfFrom: "001-110", FssfTo: "001-120", Amount: dec("0"), FsResNo: 1})
	if msg := fieldMessage(t, err, "amount"); msg != "amount must be positive" {
		t.Fatalf("unexpected message %q", msg)
	}

	pending, err := models.CreateBudgetAction(ctx, &models.NewBudgetAction{Date: date, FssfFrom: "001-110", FssfTo: "001-120", Amount: dec("250"), FsResNo: 41})
	if err != nil {
		t.Fatalf("create pending action: %v", err)
	}
	if _, err := models.CreateBudgetAction(ctx, &models.NewBudgetAction{Date: date, FssfFrom: "001-120", FssfTo: "002-110", Amount: dec("75"), Approved: true, FsResNo: 42}); err != nil {
		t.Fatalf("create approved action: %v", err)
	}

	approved := false
	list, err := models.ListBudgetActions(ctx, &approved)
	if err != nil {
		t.Fatalf("list budget actions: %v", err)
	}
	if len(list) != 1 || list[0].ID != pending.ID {
		t.Fatalf("expected only the pending action, got %+v", list)
	}
	all, _ := models.ListBudgetActions(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(all))
	}
}
