package models_test

import (
	"testing"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
)

func TestCreateLine_RejectsExpenseBudgetPastFundCash(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")

	l.line(t, ctx, "100", models.LineTypeExpense, "600")
	_, err := models.CreateLine(ctx, &models.NewLine{FundId: l.fund.ID, Code: "200", Name: "Travel", Type: models.LineTypeExpense, Budgeted: dec("500")})
	if err == nil {
		t.Fatalf("expected second expense line to be rejected")
	}
	if msg := fieldMessage(t, err, "budgeted"); msg != "Not enough remaining balance in fund" {
		t.Fatalf("unexpected message %q", msg)
	}

	// a revenue budget frees room for more expense budget
	l.line(t, ctx, "300", models.LineTypeRevenue, "200")
	l.line(t, ctx, "200", models.LineTypeExpense, "500")
}

func TestUpdateLine_CannotDropBelowSpent(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	line := l.line(t, ctx, "100", models.LineTypeExpense, "100")
	item := l.item(t, ctx, line)
	if _, err := l.expense(ctx, item, "60", "k1", nil); err != nil {
		t.Fatalf("post expense: %v", err)
	}

	_, err := models.UpdateLine(ctx, line.ID, &models.UpdateLineInput{Name: line.Name, Budgeted: dec("50")})
	if err == nil {
		t.Fatalf("expected budget below spent to be rejected")
	}
	if msg := fieldMessage(t, err, "budgeted"); msg != "Expenses have already exceeded that budget" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreateExpense_EnforcesLineBudget(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	line := l.line(t, ctx, "100", models.LineTypeExpense, "100")
	item := l.item(t, ctx, line)

	_, err := l.expense(ctx, item, "150", "k1", nil)
	if err == nil {
		t.Fatalf("expected expense over line budget to be rejected")
	}
	if msg := fieldMessage(t, err, "amount"); msg != "amount exceeds line budget remaining" {
		t.Fatalf("unexpected message %q", msg)
	}

	expense, err := l.expense(ctx, item, "80", "k2", nil)
	if err != nil {
		t.Fatalf("post expense: %v", err)
	}
	if expense.LineId != line.ID || expense.FundId != l.fund.ID {
		t.Fatalf("expense not attributed to its line and fund: %+v", expense)
	}

	got, err := models.GetLine(ctx, line.ID)
	if err != nil {
		t.Fatalf("get line: %v", err)
	}
	if !got.BudgetRemaining.Equal(dec("20")) {
		t.Fatalf("expected remaining 20, got %s", got.BudgetRemaining)
	}
	fund, err := models.GetFund(ctx, l.fund.ID)
	if err != nil {
		t.Fatalf("get fund: %v", err)
	}
	if !fund.CashBalance.Equal(dec("920")) {
		t.Fatalf("expected cash 920, got %s", fund.CashBalance)
	}
}

func TestCreateExpense_RejectsDuplicateKey(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	item := l.item(t, ctx, l.line(t, ctx, "100", models.LineTypeExpense, "500"))

	if _, err := l.expense(ctx, item, "10", "101-1-2024-07-01-09:30", nil); err != nil {
		t.Fatalf("post expense: %v", err)
	}
	_, err := l.expense(ctx, item, "10", "101-1-2024-07-01-09:30", nil)
	if err == nil {
		t.Fatalf("expected duplicate key to be rejected")
	}
	if msg := fieldMessage(t, err, "expense_full_id"); msg != "duplicate expense 101-1-2024-07-01-09:30" {
		t.Fatalf("unexpected message %q", msg)
	}

	fund, _ := models.GetFund(ctx, l.fund.ID)
	if !fund.CashBalance.Equal(dec("990")) {
		t.Fatalf("rejected duplicate moved cash: %s", fund.CashBalance)
	}
}

func TestCreateRevenue_RequiresRevenueLine(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	expenseItem := l.item(t, ctx, l.line(t, ctx, "100", models.LineTypeExpense, "100"))
	revenueLine := l.line(t, ctx, "400", models.LineTypeRevenue, "300")
	revenueItem := l.item(t, ctx, revenueLine)

	_, err := l.revenue(ctx, expenseItem, "25", nil)
	if err == nil {
		t.Fatalf("expected revenue on expense line to be rejected")
	}
	if msg := fieldMessage(t, err, "item_id"); msg != "item must belong to a revenue line" {
		t.Fatalf("unexpected message %q", msg)
	}

	if _, err := l.revenue(ctx, revenueItem, "25", nil); err != nil {
		t.Fatalf("post revenue: %v", err)
	}
	got, _ := models.GetLine(ctx, revenueLine.ID)
	if !got.TotalIncome.Equal(dec("25")) {
		t.Fatalf("expected income 25, got %s", got.TotalIncome)
	}
	fund, _ := models.GetFund(ctx, l.fund.ID)
	if !fund.CashBalance.Equal(dec("1025")) {
		t.Fatalf("expected cash 1025, got %s", fund.CashBalance)
	}
}

func TestPostings_KeepCashEqualToOpeningPlusFlows(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	expenseItem := l.item(t, ctx, l.line(t, ctx, "100", models.LineTypeExpense, "400"))
	revenueItem := l.item(t, ctx, l.line(t, ctx, "400", models.LineTypeRevenue, "500"))

	for i, amount := range []string{"12.34", "50", "0.66"} {
		if _, err := l.expense(ctx, expenseItem, amount, "cash-"+string(rune('a'+i)), nil); err != nil {
			t.Fatalf("post expense %s: %v", amount, err)
		}
	}
	for _, amount := range []string{"100", "7.25"} {
		if _, err := l.revenue(ctx, revenueItem, amount, nil); err != nil {
			t.Fatalf("post revenue %s: %v", amount, err)
		}
	}

	fund, _ := models.GetFund(ctx, l.fund.ID)
	// 1000 - 63.00 + 107.25
	if !fund.CashBalance.Equal(dec("1044.25")) {
		t.Fatalf("expected cash 1044.25, got %s", fund.CashBalance)
	}
	counts, err := models.LedgerEventCounts(ctx)
	if err != nil {
		t.Fatalf("ledger event counts: %v", err)
	}
	if counts[models.OutboxPublishStatusPending] != 5 {
		t.Fatalf("expected 5 pending ledger events, got %v", counts)
	}
}

func TestGrantLines_AwardAndRevenueLineCaps(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	grant, err := models.CreateGrant(ctx, &models.NewGrant{Name: "Immunization", FundId: l.fund.ID, Year: 2024, AwardAmount: dec("5000")})
	if err != nil {
		t.Fatalf("create grant: %v", err)
	}
	if grant.MaxRevenueLines != 1 {
		t.Fatalf("expected default of one revenue line, got %d", grant.MaxRevenueLines)
	}

	if _, err := models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Award", Type: models.LineTypeRevenue, Budgeted: dec("1000")}); err != nil {
		t.Fatalf("create revenue grant line: %v", err)
	}
	_, err = models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Match", Type: models.LineTypeRevenue, Budgeted: dec("500")})
	if err == nil {
		t.Fatalf("expected second revenue line to be rejected")
	}
	if msg := fieldMessage(t, err, "type"); msg != "Already have the max amount of revenue lines for the grant" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Salaries", Type: models.LineTypeExpense, Budgeted: dec("4500")})
	if err == nil {
		t.Fatalf("expected grant lines past the award to be rejected")
	}
	if msg := fieldMessage(t, err, "budgeted"); msg != "Budgeted is more than is left in Grant Award" {
		t.Fatalf("unexpected message %q", msg)
	}

	// over the award and over the revenue line cap: the cap is reported
	_, err = models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Extra award", Type: models.LineTypeRevenue, Budgeted: dec("9000")})
	if msg := fieldMessage(t, err, "type"); msg != "Already have the max amount of revenue lines for the grant" {
		t.Fatalf("expected the revenue line cap first, got %q (%v)", msg, err)
	}
}

func TestCreateExpense_ChargesGrantLine(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	item := l.item(t, ctx, l.line(t, ctx, "100", models.LineTypeExpense, "500"))
	grant, err := models.CreateGrant(ctx, &models.NewGrant{Name: "Immunization", FundId: l.fund.ID, Year: 2024, AwardAmount: dec("300")})
	if err != nil {
		t.Fatalf("create grant: %v", err)
	}
	grantLine, err := models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Supplies", Type: models.LineTypeExpense, Budgeted: dec("100")})
	if err != nil {
		t.Fatalf("create grant line: %v", err)
	}

	_, err = l.expense(ctx, item, "120", "g1", &grantLine.ID)
	if err == nil {
		t.Fatalf("expected expense over grant line budget to be rejected")
	}
	if msg := fieldMessage(t, err, "amount"); msg != "amount exceeds grant line budget remaining" {
		t.Fatalf("unexpected message %q", msg)
	}

	if _, err := l.expense(ctx, item, "70", "g2", &grantLine.ID); err != nil {
		t.Fatalf("post grant expense: %v", err)
	}
	got, _ := models.GetGrantLine(ctx, grantLine.ID)
	if !got.BudgetRemaining.Equal(dec("30")) {
		t.Fatalf("expected grant line remaining 30, got %s", got.BudgetRemaining)
	}
}

func TestFundBudgetSummary(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	item := l.item(t, ctx, l.line(t, ctx, "100", models.LineTypeExpense, "600"))
	l.line(t, ctx, "400", models.LineTypeRevenue, "150")
	if _, err := l.expense(ctx, item, "100", "s1", nil); err != nil {
		t.Fatalf("post expense: %v", err)
	}

	summary, err := models.GetFundBudgetSummary(ctx, l.fund.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Committed.Equal(dec("450")) {
		t.Fatalf("expected committed 450, got %s", summary.Committed)
	}
	if !summary.Available.Equal(dec("450")) {
		t.Fatalf("expected available 450, got %s", summary.Available)
	}
	if !summary.Spent.Equal(dec("100")) || summary.ExpenseLineCount != 1 || summary.RevenueLineCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestReconciliation_ReportsAndRepairsCounterDrift(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "1000")
	line := l.line(t, ctx, "100", models.LineTypeExpense, "100")
	item := l.item(t, ctx, line)
	if _, err := l.expense(ctx, item, "80", "r1", nil); err != nil {
		t.Fatalf("post expense: %v", err)
	}

	clean, err := models.RunReconciliationChecks(ctx, false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(clean.Reports) != 0 {
		t.Fatalf("expected no drift, got %+v", clean.Reports)
	}

	if err := config.GetDB().Model(&models.Line{}).Where("id = ?", line.ID).Update("budget_spent", dec("5")).Error; err != nil {
		t.Fatalf("tamper: %v", err)
	}
	drifted, err := models.RunReconciliationChecks(ctx, false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(drifted.Reports) != 1 {
		t.Fatalf("expected one drift, got %+v", drifted.Reports)
	}
	r := drifted.Reports[0]
	if r.CheckType != models.CheckLineSpent || r.EntityId != line.ID || !r.Expected.Equal(dec("80")) || !r.Actual.Equal(dec("5")) || r.Repaired {
		t.Fatalf("unexpected report %+v", r)
	}

	repaired, err := models.RunReconciliationChecks(ctx, true)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if repaired.Repaired != 1 {
		t.Fatalf("expected one repair, got %d", repaired.Repaired)
	}
	after, err := models.RunReconciliationChecks(ctx, false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(after.Reports) != 0 {
		t.Fatalf("expected no drift after repair, got %+v", after.Reports)
	}

	stored, err := models.ListReconciliationReports(ctx, drifted.CorrelationId)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected the drift to be stored, got %d rows", len(stored))
	}
}
