package models

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownTable = errors.New("unknown table")

// Table is one entry of the import/export registry.
type Table interface {
	Tag() string
	Header() []string
	// MoneyColumns returns the indexes of Header holding amounts.
	MoneyColumns() []int
	// Export returns every row ordered by primary key, formatted like Header.
	Export(ctx context.Context, tx *gorm.DB) ([][]string, error)
	// Import restores rows inside tx, upserting by primary key.
	Import(ctx context.Context, tx *gorm.DB, records [][]string) (int, error)
}

type tableCodec[T any] struct {
	tag     string
	columns []column[T]
	// refs checks that every key the row references exists
	refs func(tx *gorm.DB, row *T) error
}

func (c *tableCodec[T]) Tag() string {
	return c.tag
}

func (c *tableCodec[T]) Header() []string {
	header := make([]string, len(c.columns))
	for i, col := range c.columns {
		header[i] = col.name
	}
	return header
}

func (c *tableCodec[T]) MoneyColumns() []int {
	var idx []int
	for i, col := range c.columns {
		if col.money {
			idx = append(idx, i)
		}
	}
	return idx
}

func (c *tableCodec[T]) Export(ctx context.Context, tx *gorm.DB) ([][]string, error) {
	var rows []T
	if err := tx.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows))
	for i := range rows {
		record := make([]string, len(c.columns))
		for j, col := range c.columns {
			record[j] = col.get(&rows[i])
		}
		out = append(out, record)
	}
	return out, nil
}

func (c *tableCodec[T]) Import(ctx context.Context, tx *gorm.DB, records [][]string) (int, error) {
	tx = tx.WithContext(ctx)
	for i, record := range records {
		// row 1 is the header
		rowNo := i + 2
		if len(record) != len(c.columns) {
			return 0, utils.NewValidationError(fmt.Sprintf("row %d", rowNo), fmt.Sprintf("expected %d columns, got %d", len(c.columns), len(record)))
		}
		var row T
		for j, col := range c.columns {
			if err := col.set(&row, record[j]); err != nil {
				return 0, utils.WithRow(err, rowNo)
			}
		}
		if c.refs != nil {
			if err := c.refs(tx, &row); err != nil {
				return 0, utils.WithRow(err, rowNo)
			}
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

var registry = map[string]Table{}

func register(t Table) {
	registry[t.Tag()] = t
}

func LookupTable(tag string) (Table, error) {
	t, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, tag)
	}
	return t, nil
}

func TableTags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ExportTableRows returns the header and all rows of a registered table.
func ExportTableRows(ctx context.Context, tag string) ([]string, [][]string, error) {
	t, err := LookupTable(tag)
	if err != nil {
		return nil, nil, err
	}
	rows, err := t.Export(ctx, config.GetDB())
	if err != nil {
		return nil, nil, err
	}
	return t.Header(), rows, nil
}

func ExportTableCSV(ctx context.Context, tag string, w io.Writer) error {
	header, rows, err := ExportTableRows(ctx, tag)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// ImportTableCSV restores a whole CSV file into a table in one transaction.
// A header that does not exactly match the table's columns rejects the file before any row is read.
func ImportTableCSV(ctx context.Context, tag string, r io.Reader) (int, error) {
	t, err := LookupTable(tag)
	if err != nil {
		return 0, err
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil || len(records) == 0 || !headerMatches(records[0], t.Header()) {
		return 0, utils.NewValidationError("file", utils.BadFileMessage)
	}

	var count int
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = t.Import(ctx, tx, records[1:])
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func headerMatches(got []string, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		name := strings.TrimSpace(got[i])
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name != want[i] {
			return false
		}
	}
	return true
}
