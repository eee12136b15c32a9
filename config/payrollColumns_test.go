package config

import "testing"

func TestLoadPayrollColumns_Default(t *testing.T) {
	t.Setenv("PAYROLL_COLUMNS_FILE", "")
	cols, err := LoadPayrollColumns()
	if err != nil {
		t.Fatalf("LoadPayrollColumns: %v", err)
	}
	if got := cols.Header("beg_date"); got != "Start Date" {
		t.Fatalf("beg_date header = %q, want %q", got, "Start Date")
	}
	if got := cols.Header("hours"); got != "Duration (decimal)" {
		t.Fatalf("hours header = %q", got)
	}
	if cols.DateFormat != "01/02/2006" {
		t.Fatalf("date format = %q", cols.DateFormat)
	}
}

func TestParsePayrollColumns_MissingField(t *testing.T) {
	_, err := ParsePayrollColumns([]byte("columns:\n  activity: Project\n"))
	if err == nil {
		t.Fatalf("expected error for incomplete mapping")
	}
}
