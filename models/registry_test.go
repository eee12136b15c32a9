package models_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

func TestExportImport_RoundTripsDepts(t *testing.T) {
	ctx := setupDB(t)
	for _, name := range []string{"Nursing", "Environmental"} {
		if _, err := models.CreateDept(ctx, &models.NewDept{Name: name}); err != nil {
			t.Fatalf("create dept: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := models.ExportTableCSV(ctx, "depts", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "id,name\n1,Nursing\n2,Environmental\n"
	if buf.String() != want {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}

	edited := strings.Replace(buf.String(), "Environmental", "Environmental Health", 1)
	count, err := models.ImportTableCSV(ctx, "depts", strings.NewReader(edited))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows imported, got %d", count)
	}
	dept, err := models.GetDept(ctx, 2)
	if err != nil {
		t.Fatalf("get dept: %v", err)
	}
	if dept.Name != "Environmental Health" {
		t.Fatalf("import did not upsert, got %q", dept.Name)
	}
}

func TestImportTableCSV_AcceptsByteOrderMark(t *testing.T) {
	ctx := setupDB(t)
	count, err := models.ImportTableCSV(ctx, "depts", strings.NewReader("\ufeffid,name\n7,Vital Records\n"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestImportTableCSV_RejectsBadHeader(t *testing.T) {
	ctx := setupDB(t)
	_, err := models.ImportTableCSV(ctx, "depts", strings.NewReader("id,title\n1,Nursing\n"))
	if err == nil {
		t.Fatalf("expected bad header to be rejected")
	}
	if msg := fieldMessage(t, err, "file"); msg != utils.BadFileMessage {
		t.Fatalf("unexpected message %q", msg)
	}
	depts, _ := models.ListDepts(ctx)
	if len(depts) != 0 {
		t.Fatalf("rejected file wrote %d rows", len(depts))
	}
}

func TestImportTableCSV_RollsBackOnBadReference(t *testing.T) {
	ctx := setupDB(t)
	csv := "id,code,year,name,dept_id,sof,mac_elig,cash_balance,total\n" +
		"2024-001,001,2024,General,,,false,100.00,100.00\n" +
		"2024-002,002,2024,Grants,99,,false,50.00,50.00\n"
	_, err := models.ImportTableCSV(ctx, "funds", strings.NewReader(csv))
	if !utils.IsIntegrityError(err) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	funds, _ := models.ListFunds(ctx, 0)
	if len(funds) != 0 {
		t.Fatalf("expected no funds after rollback, got %d", len(funds))
	}
}

func TestLookupTable_Unknown(t *testing.T) {
	if _, err := models.LookupTable("invoices"); !errors.Is(err, models.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
	tags := models.TableTags()
	if len(tags) == 0 || tags[0] != "activities" {
		t.Fatalf("expected sorted tags, got %v", tags)
	}
}

func TestExportImport_RoundTripsLedgerTables(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "2000")
	expenseLine := l.line(t, ctx, "110", models.LineTypeExpense, "600")
	revenueLine := l.line(t, ctx, "410", models.LineTypeRevenue, "300")
	supplies, err := models.CreateItem(ctx, &models.NewItem{Name: "Vaccine stock", LineId: expenseLine.ID, LineItem: "110-02", Category: "Supplies", FeeBased: true, Month: 7})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	fees := l.item(t, ctx, revenueLine)
	grant, err := models.CreateGrant(ctx, &models.NewGrant{Name: "Immunization", FundId: l.fund.ID, Year: 2024, AwardAmount: dec("300")})
	if err != nil {
		t.Fatalf("create grant: %v", err)
	}
	grantLine, err := models.CreateGrantLine(ctx, &models.NewGrantLine{GrantId: grant.ID, Name: "Supplies", Type: models.LineTypeExpense, Budgeted: dec("100")})
	if err != nil {
		t.Fatalf("create grant line: %v", err)
	}
	if _, err := l.expense(ctx, supplies, "40.25", "rt-1", &grantLine.ID); err != nil {
		t.Fatalf("grant expense: %v", err)
	}
	if _, err := l.expense(ctx, supplies, "12.10", "rt-2", nil); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, err := l.revenue(ctx, fees, "75.50", nil); err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if _, err := models.CreateBudgetAction(ctx, &models.NewBudgetAction{
		Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), FssfFrom: "001-110", FssfTo: "001-120",
		Amount: dec("250"), Approved: true, FsResNo: 42,
	}); err != nil {
		t.Fatalf("create budget action: %v", err)
	}
	if _, err := models.CreateCarryover(ctx, &models.NewCarryover{
		FundId: l.fund.ID, DeptId: l.dept.ID, Fy: 2023, CoAmount: dec("120.40"), Encumbered: dec("30"),
		YearEndBalance: dec("150.40"), BegBalance: dec("900"),
		FyBegDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), FyEndDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create carryover: %v", err)
	}

	// parents before children so every reference resolves on restore
	tables := []string{"depts", "funds", "lines", "items", "people", "employees", "activities",
		"grants", "grant_lines", "expenses", "revenues", "budget_actions", "carryovers"}
	exported := make(map[string]string)
	for _, tag := range tables {
		var buf bytes.Buffer
		if err := models.ExportTableCSV(ctx, tag, &buf); err != nil {
			t.Fatalf("export %s: %v", tag, err)
		}
		exported[tag] = buf.String()
	}
	if !strings.Contains(exported["items"], "110-02,Supplies,true,7") {
		t.Fatalf("item fields missing from export:\n%s", exported["items"])
	}

	ctx = setupDB(t)
	for _, tag := range tables {
		if _, err := models.ImportTableCSV(ctx, tag, strings.NewReader(exported[tag])); err != nil {
			t.Fatalf("import %s: %v", tag, err)
		}
	}
	for _, tag := range tables {
		var buf bytes.Buffer
		if err := models.ExportTableCSV(ctx, tag, &buf); err != nil {
			t.Fatalf("re-export %s: %v", tag, err)
		}
		if buf.String() != exported[tag] {
			t.Fatalf("%s changed on restore:\nbefore:\n%s\nafter:\n%s", tag, exported[tag], buf.String())
		}
	}
}
