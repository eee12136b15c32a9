package workflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"github.com/wchd/budget_backend/workflow"
)

const payrollHeader = "Project,User,Start Date,End Date,Start Time,Duration (decimal),Billable Amount (USD)\n"

const payrollFile = payrollHeader +
	"Clinic,Ada Lane,07/01/2024,07/01/2024,09:00:00,2.50,50.00\n" +
	"Clinic,Ada Lane,07/02/2024,07/02/2024,08:30:00,4,80.00\n" +
	",,,,,,\n"

var postingDate = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func TestImportPayroll_PostsEachEntry(t *testing.T) {
	ctx := setupDB(t)
	l := newPayrollLedger(t, ctx)

	result, err := workflow.ImportPayroll(ctx, strings.NewReader(payrollFile), workflow.PayrollImportOptions{PostingDate: postingDate})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Rows != 2 || result.Posted != 2 || result.Skipped != 0 || result.Payrolls != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Keys[0] != "101-1-2024-07-01-09:00" {
		t.Fatalf("unexpected dedup key %q", result.Keys[0])
	}

	line, _ := models.GetLine(ctx, l.line.ID)
	if !line.BudgetSpent.Equal(dec("130")) {
		t.Fatalf("expected 130 spent, got %s", line.BudgetSpent)
	}
	expenses, err := models.ListExpenses(ctx, models.PostingFilter{EmployeeId: l.employee.ID})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	for _, e := range expenses {
		if !e.Date.Equal(postingDate) || e.Warrant != 1 || e.Comment != "Payroll" {
			t.Fatalf("unexpected payroll expense %+v", e)
		}
	}
	payrolls, err := models.ListPayrolls(ctx, "2024-14", 0)
	if err != nil {
		t.Fatalf("list payrolls: %v", err)
	}
	if len(payrolls) != 2 {
		t.Fatalf("expected 2 payroll rows, got %d", len(payrolls))
	}
}

func TestImportPayroll_ReimportSkipsPostedEntries(t *testing.T) {
	ctx := setupDB(t)
	l := newPayrollLedger(t, ctx)

	if _, err := workflow.ImportPayroll(ctx, strings.NewReader(payrollFile), workflow.PayrollImportOptions{PostingDate: postingDate}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	again, err := workflow.ImportPayroll(ctx, strings.NewReader(payrollFile), workflow.PayrollImportOptions{PostingDate: postingDate})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again.Posted != 0 || again.Skipped != 2 {
		t.Fatalf("expected every entry skipped, got %+v", again)
	}
	fund, _ := models.GetFund(ctx, l.fund.ID)
	if !fund.CashBalance.Equal(dec("9870")) {
		t.Fatalf("expected cash 9870, got %s", fund.CashBalance)
	}
	payrolls, _ := models.ListPayrolls(ctx, "2024-14", l.employee.ID)
	if len(payrolls) != 2 {
		t.Fatalf("re-import duplicated payroll rows: %d", len(payrolls))
	}
}

func TestImportPayroll_BadRowRejectsWholeFile(t *testing.T) {
	ctx := setupDB(t)
	l := newPayrollLedger(t, ctx)
	file := payrollHeader +
		"Clinic,Ada Lane,07/01/2024,07/01/2024,09:00:00,2.50,50.00\n" +
		"Dental,Ada Lane,07/02/2024,07/02/2024,08:30:00,4,80.00\n"

	_, err := workflow.ImportPayroll(ctx, strings.NewReader(file), workflow.PayrollImportOptions{PostingDate: postingDate})
	if !utils.IsIntegrityError(err) {
		t.Fatalf("expected integrity error for unknown activity, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("expected the failing row in the error, got %v", err)
	}
	expenses, _ := models.ListExpenses(ctx, models.PostingFilter{})
	if len(expenses) != 0 {
		t.Fatalf("expected rollback, found %d expenses", len(expenses))
	}
	line, _ := models.GetLine(ctx, l.line.ID)
	if !line.BudgetSpent.IsZero() {
		t.Fatalf("expected nothing spent, got %s", line.BudgetSpent)
	}
}

func TestImportPayroll_RejectsEntryOutsidePayPeriods(t *testing.T) {
	ctx := setupDB(t)
	newPayrollLedger(t, ctx)
	file := payrollHeader + "Clinic,Ada Lane,08/01/2024,08/01/2024,09:00:00,1,20.00\n"

	_, err := workflow.ImportPayroll(ctx, strings.NewReader(file), workflow.PayrollImportOptions{})
	if !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "No payperiod for this date range") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestImportPayroll_RejectsMissingColumn(t *testing.T) {
	ctx := setupDB(t)
	newPayrollLedger(t, ctx)
	file := "Project,User,Start Date\nClinic,Ada Lane,07/01/2024\n"

	_, err := workflow.ImportPayroll(ctx, strings.NewReader(file), workflow.PayrollImportOptions{})
	if err == nil || !strings.Contains(err.Error(), utils.BadFileMessage) {
		t.Fatalf("expected bad file error, got %v", err)
	}
}

func TestImportPayroll_KeepsEverySameDayEntry(t *testing.T) {
	ctx := setupDB(t)
	l := newPayrollLedger(t, ctx)
	file := payrollHeader +
		"Clinic,Ada Lane,07/01/2024,07/01/2024,08:00:00,2,40.00\n" +
		"Clinic,Ada Lane,07/01/2024,07/01/2024,13:00:00,3,60.00\n"

	result, err := workflow.ImportPayroll(ctx, strings.NewReader(file), workflow.PayrollImportOptions{PostingDate: postingDate})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Posted != 2 || result.Payrolls != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	payrolls, err := models.ListPayrolls(ctx, "2024-14", l.employee.ID)
	if err != nil {
		t.Fatalf("list payrolls: %v", err)
	}
	if len(payrolls) != 2 {
		t.Fatalf("expected 2 payroll rows, got %d", len(payrolls))
	}
	hours := dec("0")
	for _, p := range payrolls {
		hours = hours.Add(p.Hours)
	}
	if !hours.Equal(dec("5")) {
		t.Fatalf("expected 5 payroll hours, got %s", hours)
	}

	again, err := workflow.ImportPayroll(ctx, strings.NewReader(file), workflow.PayrollImportOptions{PostingDate: postingDate})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again.Skipped != 2 || again.Payrolls != 0 {
		t.Fatalf("re-import created payroll rows: %+v", again)
	}
}
