// Package extract issues schema-constrained extraction calls against an
// inference backend and validates the structured responses.
package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/confield/confield/internal/contract"
	"github.com/confield/confield/internal/llm"
	"github.com/confield/confield/internal/logger"
)

// Client performs extraction calls. It never retries: one call attempt is
// one recorded outcome, and retry policy belongs to the caller.
type Client struct {
	provider  llm.Provider
	maxTokens int
}

// Option configures the client.
type Option func(*Client)

// WithMaxTokens sets the response token ceiling.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// NewClient creates a client on top of an inference provider.
func NewClient(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		provider:  provider,
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractField issues one constrained extraction call for a single field.
// It returns the normalized value, or nil when the model found no value.
func (c *Client) ExtractField(ctx context.Context, text string, fc contract.FieldContract) (any, error) {
	logger.Debug("extracting field",
		"field", fc.Name,
		"provider", c.provider.Name(),
		"text_size", len(text))

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System:        fc.Instruction,
		User:          buildFieldPrompt(text, fc),
		Deterministic: true,
		MaxTokens:     c.maxTokens,
		JSONSchema:    fc.ResponseSchema,
	})
	if err != nil {
		return nil, &BackendError{Provider: c.provider.Name(), Err: err}
	}

	// The schema already constrains generation, but re-parsing is the only
	// way to fail fast on a non-conforming backend.
	var parsed map[string]any
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return nil, &MalformedResponseError{
			Field: fc.Name,
			Raw:   truncateForError(resp.Content),
			Err:   err,
		}
	}

	// An absent key means no value, not an error.
	value, ok := parsed[fc.ResponseKey]
	if !ok {
		return nil, nil
	}

	normalized, err := normalizeValue(value, fc.Kind)
	if err != nil {
		return nil, &MalformedResponseError{
			Field: fc.Name,
			Raw:   truncateForError(resp.Content),
			Err:   err,
		}
	}

	logger.Debug("field extracted",
		"field", fc.Name,
		"value", normalized,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)
	return normalized, nil
}

// buildFieldPrompt assembles the user instruction: exemplar block, literal
// input text, and the JSON-only directive.
func buildFieldPrompt(text string, fc contract.FieldContract) string {
	var sb strings.Builder
	sb.WriteString(fc.Exemplars)
	sb.WriteString("\n\nInput:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY the JSON object.")
	return sb.String()
}
