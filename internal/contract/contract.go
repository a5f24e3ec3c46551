// Package contract defines the static extraction metadata for each target
// field: the prompt components, the response schema, and the store columns
// a field reads from and writes to.
package contract

import (
	"fmt"
	"strings"
)

// Kind describes how an extracted value is normalized and validated.
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindDate      Kind = "date"      // normalized to YYYY-MM-DD
	KindDirection Kind = "direction" // payable_by_us | payable_to_us | unknown
	KindISIN      Kind = "isin"      // 12-character uppercase alphanumeric
)

// FieldContract is the immutable extraction configuration for one field.
type FieldContract struct {
	Name         string
	SourceColumn string // raw column the field is derived from
	ResultColumn string // column holding the extracted value; non-empty means resolved
	Instruction  string // system prompt
	Exemplars    string // few-shot block prepended to the input text
	ResponseKey  string // key inside the model's JSON response
	Kind         Kind

	// ResponseSchema constrains generation. Built once at registry
	// construction from ResponseKey and Kind.
	ResponseSchema map[string]any
}

// ConfigurationError reports an invalid contract set. It is fatal at
// startup, before any row processing begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("field contract %q: %s", e.Field, e.Reason)
}

// Registry is an ordered, read-only collection of field contracts.
type Registry struct {
	contracts []FieldContract
	byName    map[string]int
}

// NewRegistry validates the contract set and builds the lookup table.
// Duplicate result columns and missing prompt components fail fast.
func NewRegistry(contracts ...FieldContract) (*Registry, error) {
	byName := make(map[string]int, len(contracts))
	resultCols := make(map[string]string, len(contracts))

	for i, c := range contracts {
		if c.Name == "" {
			return nil, &ConfigurationError{Field: c.ResultColumn, Reason: "missing field name"}
		}
		if _, dup := byName[c.Name]; dup {
			return nil, &ConfigurationError{Field: c.Name, Reason: "duplicate field name"}
		}
		if c.ResultColumn == "" {
			return nil, &ConfigurationError{Field: c.Name, Reason: "missing result column"}
		}
		if owner, dup := resultCols[c.ResultColumn]; dup {
			return nil, &ConfigurationError{
				Field:  c.Name,
				Reason: fmt.Sprintf("result column %q already used by field %q", c.ResultColumn, owner),
			}
		}
		if strings.TrimSpace(c.Instruction) == "" {
			return nil, &ConfigurationError{Field: c.Name, Reason: "missing instruction text"}
		}
		if strings.TrimSpace(c.Exemplars) == "" {
			return nil, &ConfigurationError{Field: c.Name, Reason: "missing exemplar text"}
		}
		if c.ResponseKey == "" {
			return nil, &ConfigurationError{Field: c.Name, Reason: "missing response key"}
		}

		contracts[i].ResponseSchema = responseSchema(c.ResponseKey, c.Kind)
		byName[c.Name] = i
		resultCols[c.ResultColumn] = c.Name
	}

	return &Registry{contracts: contracts, byName: byName}, nil
}

// Contracts returns the contracts in registry order.
func (r *Registry) Contracts() []FieldContract {
	out := make([]FieldContract, len(r.contracts))
	copy(out, r.contracts)
	return out
}

// Lookup returns the contract for a field name.
func (r *Registry) Lookup(name string) (FieldContract, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FieldContract{}, false
	}
	return r.contracts[i], true
}

// ResultColumns returns the result column names in registry order.
func (r *Registry) ResultColumns() []string {
	cols := make([]string, len(r.contracts))
	for i, c := range r.contracts {
		cols[i] = c.ResultColumn
	}
	return cols
}

// Len returns the number of contracts.
func (r *Registry) Len() int {
	return len(r.contracts)
}

// responseSchema builds the single-key JSON schema for a field. Every value
// is nullable: null is the sanctioned "no value found" answer.
func responseSchema(key string, kind Kind) map[string]any {
	var prop map[string]any
	switch kind {
	case KindNumber:
		prop = map[string]any{"type": []string{"number", "null"}}
	case KindDirection:
		prop = map[string]any{
			"type": []string{"string", "null"},
			"enum": []any{"payable_by_us", "payable_to_us", "unknown", nil},
		}
	default:
		prop = map[string]any{"type": []string{"string", "null"}}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			key: prop,
		},
		"required":             []any{key},
		"additionalProperties": false,
	}
}
