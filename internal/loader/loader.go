// Package loader bulk-imports external spreadsheet exports into the
// confirmation table's source columns. One-shot batch import, outside the
// extraction loop.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/store"
)

// validColumns are the confirmation_data source columns an import may fill.
var validColumns = []string{
	"creation_date",
	"currency",
	"settlement_amount",
	"buy_sell",
	"isin",
	"settlement_date",
	"SSI",
}

// columnAliases maps known export header spellings to table columns.
var columnAliases = map[string]string{
	"create_date": "creation_date",
}

// dateColumns are normalized to YYYY-MM-DD on import.
var dateColumns = map[string]bool{
	"creation_date":   true,
	"settlement_date": true,
}

// Result summarizes one import.
type Result struct {
	Inserted int
	Columns  []string // table columns actually filled, in file order
	Ignored  []string // file headers with no matching table column
}

// LoadCSV imports a CSV export into confirmation_data. Unrecognized columns
// are ignored with a log line; rows land in a single transaction.
func LoadCSV(ctx context.Context, st *store.Store, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("import file %s is empty", path)
	}

	header := records[0]
	result := &Result{}

	// Map each file column to a table column, or mark it ignored.
	indices := make([]int, 0, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if !isValidColumn(name) {
			result.Ignored = append(result.Ignored, name)
			continue
		}
		result.Columns = append(result.Columns, name)
		indices = append(indices, i)
	}

	if len(result.Columns) == 0 {
		return nil, fmt.Errorf("no matching columns for %s (file columns: %v)", store.Table, header)
	}
	if len(result.Ignored) > 0 {
		logger.Info("ignoring unrecognized columns", "columns", result.Ignored)
	}

	tx, err := st.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(result.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		store.Table, strings.Join(result.Columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare import insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records[1:] {
		args := make([]any, len(result.Columns))
		for j, idx := range indices {
			var raw string
			if idx < len(record) {
				raw = strings.TrimSpace(record[idx])
			}
			args[j] = importValue(result.Columns[j], raw)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert import row: %w", err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	logger.Info("import complete",
		"file", path,
		"rows", result.Inserted,
		"columns", result.Columns)
	return result, nil
}

// importValue converts one cell for storage. Empty cells become NULL; date
// columns are normalized, with unparseable dates stored as NULL.
func importValue(column, raw string) any {
	if raw == "" {
		return nil
	}
	if dateColumns[column] {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil
		}
		return t.Format("2006-01-02")
	}
	return raw
}

func isValidColumn(name string) bool {
	for _, c := range validColumns {
		if c == name {
			return true
		}
	}
	return false
}
