package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed payroll_columns.yaml
var defaultPayrollColumns []byte

// PayrollColumns maps the time tracker's export headers onto payroll fields.
type PayrollColumns struct {
	DateFormat string            `yaml:"date_format"`
	TimeFormat string            `yaml:"time_format"`
	Columns    map[string]string `yaml:"columns"`
}

var requiredPayrollFields = []string{"activity", "employee", "beg_date", "end_date", "start_time", "hours"}

// LoadPayrollColumns reads PAYROLL_COLUMNS_FILE, falling back to the embedded default.
func LoadPayrollColumns() (*PayrollColumns, error) {
	data := defaultPayrollColumns
	if path := strings.TrimSpace(os.Getenv("PAYROLL_COLUMNS_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payroll columns %s: %w", path, err)
		}
		data = b
	}
	return ParsePayrollColumns(data)
}

func ParsePayrollColumns(data []byte) (*PayrollColumns, error) {
	var cols PayrollColumns
	if err := yaml.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("parse payroll columns: %w", err)
	}
	if cols.DateFormat == "" {
		cols.DateFormat = "01/02/2006"
	}
	if cols.TimeFormat == "" {
		cols.TimeFormat = "15:04:05"
	}
	for _, field := range requiredPayrollFields {
		if strings.TrimSpace(cols.Columns[field]) == "" {
			return nil, fmt.Errorf("payroll columns: missing mapping for %q", field)
		}
	}
	return &cols, nil
}

// Header returns the source column name for field.
func (p *PayrollColumns) Header(field string) string {
	return p.Columns[field]
}
