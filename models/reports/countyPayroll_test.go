package reports

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPaycode(t *testing.T) {
	cases := map[string]string{
		"Sick Leave":        "S-SICK",
		"comp time earned":  "C-COMPTIME",
		"Vacation":          "V-VACATION",
		"Holiday Pay":       "H-HOLIDAY",
		"Immunization":      "R-REGULAR PA",
		"Sick and Vacation": "S-SICK",
	}
	for program, want := range cases {
		if got := Paycode(program); got != want {
			t.Fatalf("Paycode(%q) expected %s, got %s", program, want, got)
		}
	}
}

func TestAccountDistribution(t *testing.T) {
	if got := AccountDistribution("001", "110"); got != "00150290110" {
		t.Fatalf("unexpected distribution %s", got)
	}
}

func TestWriteCountyPayrollCSV(t *testing.T) {
	rows := []CountyPayrollRow{
		{JobNumber: 101, Paycode: "R-REGULAR PA", Hours: decimal.RequireFromString("6.5"), HourlyRate: decimal.RequireFromString("20"), AccountDistribution: "00150290110"},
	}
	var buf bytes.Buffer
	if err := WriteCountyPayrollCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "JobNumber,Paycode,Time Group/Description,Hours,HourlyRate,Salary,AccountDistribution\n" +
		"101,R-REGULAR PA,,6.50,20.00,,00150290110\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
