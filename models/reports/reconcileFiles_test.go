package reports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wchd/budget_backend/utils"
	"github.com/xuri/excelize/v2"
)

func TestReconcileCSV_FlagsRowsMissingFromEitherFile(t *testing.T) {
	first := "warrant,amount\n1,10.00\n2,20.00\n2,20.00\n"
	second := "\ufeffwarrant,amount\n2,20.00\n3,30.00\n"

	result, err := ReconcileCSV(strings.NewReader(first), strings.NewReader(second))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 distinct rows, got %v", result.Rows)
	}
	want := []bool{true, false, true}
	for i, unmatched := range want {
		if result.Unmatched[i] != unmatched {
			t.Fatalf("row %v: expected unmatched=%v", result.Rows[i], unmatched)
		}
	}

	var buf bytes.Buffer
	if err := result.WriteXLSX(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	got, err := f.GetCellValue("Sheet1", "A4")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "3" {
		t.Fatalf("expected warrant 3 in A4, got %q", got)
	}
}

func TestReconcileCSV_RejectsDifferentColumns(t *testing.T) {
	_, err := ReconcileCSV(strings.NewReader("warrant,amount\n1,10\n"), strings.NewReader("warrant,total\n1,10\n"))
	if !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReconcileCSV_RejectsRaggedRows(t *testing.T) {
	_, err := ReconcileCSV(strings.NewReader("warrant,amount\n1\n"), strings.NewReader("warrant,amount\n"))
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row 2 to be rejected, got %v", err)
	}
}
