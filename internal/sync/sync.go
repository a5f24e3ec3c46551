// Package sync implements the incremental enrichment pass: per row and per
// field, extract what is still unresolved and commit the whole pass once.
package sync

import (
	"context"
	"fmt"

	"github.com/confield/confield/internal/contract"
	"github.com/confield/confield/internal/document"
	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/store"
)

// FieldExtractor is the narrow extraction interface the synchronizer
// depends on, so tests can substitute a deterministic stub.
type FieldExtractor interface {
	ExtractField(ctx context.Context, text string, fc contract.FieldContract) (any, error)
}

// RowStore is the slice of the store the synchronizer touches.
type RowStore interface {
	Rows(ctx context.Context, columns []string) ([]store.Row, error)
	Apply(ctx context.Context, updates []store.Update) error
}

// SkippedRow reports a row that was not attempted, with the reason.
type SkippedRow struct {
	ID     int64
	Reason string
}

// PassResult summarizes one synchronization pass.
type PassResult struct {
	Updated int // field values written this pass
	Skipped []SkippedRow
}

// Synchronizer runs idempotent enrichment passes over the row store.
// At most one pass may be active against a given store at a time.
type Synchronizer struct {
	registry  *contract.Registry
	texts     document.TextProvider
	extractor FieldExtractor
	store     RowStore
}

// New creates a synchronizer.
func New(registry *contract.Registry, texts document.TextProvider, extractor FieldExtractor, rows RowStore) *Synchronizer {
	return &Synchronizer{
		registry:  registry,
		texts:     texts,
		extractor: extractor,
		store:     rows,
	}
}

// Run executes one full pass and returns the number of field values
// updated. Extraction failures leave their (row, field) pair unresolved
// without aborting the pass; a store failure aborts the pass with nothing
// persisted.
func (s *Synchronizer) Run(ctx context.Context) (*PassResult, error) {
	rows, err := s.store.Rows(ctx, s.registry.ResultColumns())
	if err != nil {
		return nil, err
	}

	result := &PassResult{}
	var updates []store.Update

	for _, row := range rows {
		text, ok, err := s.texts.Text(row.ID)
		if err != nil {
			logger.Warn("row skipped: source text unreadable", "row", row.ID, "error", err)
			result.Skipped = append(result.Skipped, SkippedRow{ID: row.ID, Reason: err.Error()})
			continue
		}
		if !ok {
			// No evidence file: the row must never silently acquire a
			// resolved-but-empty result from an empty input.
			logger.Info("row skipped: missing or empty source text", "row", row.ID)
			result.Skipped = append(result.Skipped, SkippedRow{ID: row.ID, Reason: "missing or empty source text"})
			continue
		}

		for _, fc := range s.registry.Contracts() {
			if contract.HasValue(row.Columns[fc.ResultColumn]) {
				continue
			}

			value, err := s.extractor.ExtractField(ctx, text, fc)
			if err != nil {
				// Left unresolved; retried on the next pass.
				logger.Warn("field extraction failed",
					"row", row.ID,
					"field", fc.Name,
					"error", err)
				continue
			}

			stored := value
			if stored == nil {
				stored = store.NoValueMarker
			}

			updates = append(updates, store.Update{
				RowID:  row.ID,
				Column: fc.ResultColumn,
				Value:  stored,
			})
			result.Updated++

			logger.Info("field resolved",
				"row", row.ID,
				"field", fc.Name,
				"column", fc.ResultColumn,
				"value", fmt.Sprintf("%v", stored))
		}
	}

	if err := s.store.Apply(ctx, updates); err != nil {
		return nil, err
	}

	logger.Info("pass complete",
		"rows", len(rows),
		"updated", result.Updated,
		"skipped", len(result.Skipped))
	return result, nil
}
