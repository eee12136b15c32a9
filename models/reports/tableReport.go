package reports

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

func columnTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "id" {
			words[i] = "ID"
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// sumColumn adds up a formatted decimal column, ignoring blanks.
func sumColumn(rows [][]string, idx int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range rows {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			continue
		}
		d, err := decimal.NewFromString(row[idx])
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}

// BuildTableReport lays out a registered table for the PDF renderer with one total per money column.
func BuildTableReport(ctx context.Context, tag string) (*TableReport, error) {
	t, err := models.LookupTable(tag)
	if err != nil {
		return nil, err
	}
	header, rows, err := models.ExportTableRows(ctx, tag)
	if err != nil {
		return nil, err
	}
	report := &TableReport{
		Subtitle: fmt.Sprintf("%s as of %s", columnTitle(tag), utils.Today().Format("January 2, 2006")),
		Rows:     rows,
	}
	for _, h := range header {
		report.Header = append(report.Header, columnTitle(h))
	}
	for _, idx := range t.MoneyColumns() {
		total, err := sumColumn(rows, idx)
		if err != nil {
			return nil, err
		}
		report.Totals = append(report.Totals, ReportTotal{
			Label: "Total " + columnTitle(header[idx]),
			Value: FormatUSD(total),
		})
	}
	report.Totals = append(report.Totals, ReportTotal{Label: "Rows", Value: fmt.Sprint(len(rows))})
	return report, nil
}

func TablePDF(ctx context.Context, tag string) ([]byte, error) {
	started := time.Now()
	defer logSlowReport(ctx, "TablePDF", started, map[string]any{"table": tag})

	report, err := BuildTableReport(ctx, tag)
	if err != nil {
		return nil, err
	}
	data, err := report.Bytes()
	if err != nil {
		return nil, err
	}
	archive(ctx, tag+".pdf", ContentTypePDF, data)
	return data, nil
}

// WriteTableXLSX dumps a registered table into a single sheet workbook.
func WriteTableXLSX(ctx context.Context, tag string, w io.Writer) error {
	header, rows, err := models.ExportTableRows(ctx, tag)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if err := f.SetSheetName(sheet, tag); err != nil {
		return err
	}
	sheet = tag

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := writeSheetRow(f, sheet, 1, header); err != nil {
		return err
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if err := writeSheetRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSheetRow(f *excelize.File, sheet string, rowNo int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}
