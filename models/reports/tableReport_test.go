package reports

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/xuri/excelize/v2"
)

func setupFunds(t *testing.T) context.Context {
	t.Helper()
	conn, err := config.OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
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
	ctx := context.Background()
	for code, cash := range map[string]string{"001": "1000", "002": "500.25"} {
		if _, err := models.CreateFund(ctx, &models.NewFund{Code: code, Year: 2024, Name: "Fund " + code, CashBalance: decimal.RequireFromString(cash)}); err != nil {
			t.Fatalf("create fund: %v", err)
		}
	}
	return ctx
}

func TestColumnTitle(t *testing.T) {
	if got := columnTitle("grant_line_id"); got != "Grant Line ID" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestBuildTableReport_TotalsMoneyColumns(t *testing.T) {
	ctx := setupFunds(t)

	report, err := BuildTableReport(ctx, "funds")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(report.Rows) != 2 || report.Header[0] != "ID" || report.Header[7] != "Cash Balance" {
		t.Fatalf("unexpected report %+v", report)
	}
	totals := make(map[string]string)
	for _, total := range report.Totals {
		totals[total.Label] = total.Value
	}
	if totals["Total Cash Balance"] != "$1,500.25" || totals["Total Total"] != "$1,500.25" || totals["Rows"] != "2" {
		t.Fatalf("unexpected totals %v", totals)
	}
}

func TestWriteTableXLSX(t *testing.T) {
	ctx := setupFunds(t)

	var buf bytes.Buffer
	if err := WriteTableXLSX(ctx, "funds", &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("funds")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[1][0] != "2024-001" {
		t.Fatalf("unexpected sheet %v", rows)
	}
}
