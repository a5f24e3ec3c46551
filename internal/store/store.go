// Package store provides SQLite-backed access to the confirmation row
// store. The synchronizer reads and writes named columns by row id; all
// writes for one pass land in a single transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/confield/confield/internal/extract"
)

// Table is the enrichment target table.
const Table = "confirmation_data"

// CounterpartyTable receives whole-record extraction results as new rows.
const CounterpartyTable = "counterparty_data"

// NoValueMarker is stored in a result column when the model explicitly
// found no value. It keeps "resolved to nothing" distinct from "not yet
// attempted" (a SQL NULL), so the pair is never retried.
const NoValueMarker = "__none__"

// StoreError indicates the row store could not be read or the commit could
// not be applied. Fatal for the pass; nothing is persisted.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Row is one record of the confirmation table.
type Row struct {
	ID      int64
	Columns map[string]any
}

// Update stages one column write for a row.
type Update struct {
	RowID  int64
	Column string
	Value  any
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: err}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for the import loader.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	const confirmationDDL = `
	CREATE TABLE IF NOT EXISTS confirmation_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creation_date TEXT,
		currency TEXT,
		currency_result TEXT,
		settlement_amount TEXT,
		settlement_amount_result REAL,
		buy_sell TEXT,
		buy_sell_result TEXT,
		isin TEXT,
		isin_result TEXT,
		settlement_date TEXT,
		settlement_date_result TEXT,
		SSI TEXT,
		SSI_result TEXT
	)`

	const counterpartyDDL = `
	CREATE TABLE IF NOT EXISTS counterparty_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		currency TEXT,
		settlement_amount REAL,
		nominal_amount_or_quantity REAL,
		direction TEXT,
		isin TEXT,
		value_or_settlement_date TEXT,
		standard_settlement_instruction TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	for _, ddl := range []string{confirmationDDL, counterpartyDDL} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return &StoreError{Op: "init", Err: err}
		}
	}
	return nil
}

// Rows loads every row of the confirmation table with the given columns,
// in id order.
func (s *Store) Rows(ctx context.Context, columns []string) ([]Row, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}

	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(quoted, ", "), Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "read", Err: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		scan := make([]any, len(columns)+1)
		ptrs := make([]any, len(scan))
		for i := range scan {
			ptrs[i] = &scan[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &StoreError{Op: "read", Err: err}
		}

		row := Row{
			ID:      scan[0].(int64),
			Columns: make(map[string]any, len(columns)),
		}
		for i, col := range columns {
			v := scan[i+1]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row.Columns[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "read", Err: err}
	}
	return out, nil
}

// Apply commits the staged updates in one transaction. Either the whole
// pass's work lands, or none of it does.
func (s *Store) Apply(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "commit", Err: err}
	}

	for _, u := range updates {
		query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", Table, quoteIdent(u.Column))
		if _, err := tx.ExecContext(ctx, query, u.Value, u.RowID); err != nil {
			tx.Rollback()
			return &StoreError{Op: "commit", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "commit", Err: err}
	}
	return nil
}

// InsertRecord appends a whole-record extraction result as a new
// counterparty row and returns its id.
func (s *Store) InsertRecord(ctx context.Context, filename string, rec *extract.TradeRecord) (int64, error) {
	const query = `
	INSERT INTO counterparty_data (
		filename,
		currency,
		settlement_amount,
		nominal_amount_or_quantity,
		direction,
		isin,
		value_or_settlement_date,
		standard_settlement_instruction
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		filename,
		rec.Currency,
		rec.SettlementAmount,
		rec.NominalAmountOrQuantity,
		rec.Direction,
		rec.ISIN,
		rec.ValueOrSettlementDate,
		rec.StandardSettlementInstruction,
	)
	if err != nil {
		return 0, &StoreError{Op: "insert", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StoreError{Op: "insert", Err: err}
	}
	return id, nil
}

// quoteIdent quotes a column identifier. Column names come from the static
// contract registry, never from user input.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
