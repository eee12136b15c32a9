package reports

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func TestColumnWidths(t *testing.T) {
	widths, scale := columnWidths(3, 1000)
	if scale != 1 || widths[0] != 80 || widths[1] != 70 || widths[2] != 70 {
		t.Fatalf("unexpected widths %v scale %v", widths, scale)
	}

	// ten columns sum to 690 points
	widths, scale = columnWidths(10, 345)
	if scale != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", scale)
	}
	if widths[0] != 40 || widths[6] != 50 {
		t.Fatalf("unexpected scaled widths %v", widths)
	}

	widths, _ = columnWidths(12, 10000)
	if widths[10] != 80 || widths[11] != 70 {
		t.Fatalf("widths should repeat past the list, got %v", widths)
	}
}

func TestTableReportBytes(t *testing.T) {
	report := &TableReport{
		Subtitle: "Funds as of July 1, 2024",
		Header:   []string{"ID", "Name", "Cash Balance"},
		Rows:     [][]string{{"2024-001", "General Health", "1000.00"}},
		Totals:   []ReportTotal{{Label: "Total Cash Balance", Value: "$1,000.00"}},
	}
	data, err := report.Bytes()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"1234.5": "$1,234.50",
		"0":      "$0.00",
		"-80":    "-$80.00",
		"19.999": "$20.00",
	}
	for in, want := range cases {
		if got := FormatUSD(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatUSD(%s) expected %s, got %s", in, want, got)
		}
	}
}
