package reports

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/wchd/budget_backend/utils"
	"github.com/xuri/excelize/v2"
)

const reconcileHighlight = "FFFF00"

type ReconcileResult struct {
	Header    []string
	Rows      [][]string
	Unmatched []bool
}

func readReconcileCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil || len(records) == 0 {
		return nil, nil, utils.NewValidationError("file", utils.BadFileMessage)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	rows := records[1:]
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, nil, utils.WithRow(utils.NewValidationError("file", utils.BadFileMessage), i+2)
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
	}
	return header, rows, nil
}

func rowKey(row []string) string {
	return strings.Join(row, "\x1f")
}

// ReconcileCSV merges two exports of the same ledger. Duplicates are dropped and every
// row that does not appear in both files is flagged.
func ReconcileCSV(first io.Reader, second io.Reader) (*ReconcileResult, error) {
	header, firstRows, err := readReconcileCSV(first)
	if err != nil {
		return nil, err
	}
	secondHeader, secondRows, err := readReconcileCSV(second)
	if err != nil {
		return nil, err
	}
	if rowKey(header) != rowKey(secondHeader) {
		return nil, utils.NewValidationError("second_file", "Both files must have the same columns")
	}

	inFirst := make(map[string]bool, len(firstRows))
	for _, row := range firstRows {
		inFirst[rowKey(row)] = true
	}
	inSecond := make(map[string]bool, len(secondRows))
	for _, row := range secondRows {
		inSecond[rowKey(row)] = true
	}

	result := &ReconcileResult{Header: header}
	seen := make(map[string]bool)
	for _, row := range append(firstRows, secondRows...) {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Rows = append(result.Rows, row)
		result.Unmatched = append(result.Unmatched, !(inFirst[key] && inSecond[key]))
	}
	return result, nil
}

func (r *ReconcileResult) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	highlight, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{reconcileHighlight}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := writeSheetRow(f, sheet, 1, r.Header); err != nil {
		return err
	}
	for i, row := range r.Rows {
		rowNo := i + 2
		if err := writeSheetRow(f, sheet, rowNo, row); err != nil {
			return err
		}
		if !r.Unmatched[i] || len(row) == 0 {
			continue
		}
		first, _ := excelize.CoordinatesToCellName(1, rowNo)
		last, _ := excelize.CoordinatesToCellName(len(row), rowNo)
		if err := f.SetCellStyle(sheet, first, last, highlight); err != nil {
			return err
		}
	}
	return f.Write(w)
}
