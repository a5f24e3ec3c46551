// Package llm provides a unified interface for inference backends.
package llm

import (
	"context"
	"time"
)

// CompletionRequest represents one constrained extraction request.
type CompletionRequest struct {
	System        string         // system instruction
	User          string         // user instruction (exemplars + input text)
	Deterministic bool           // pins decoding temperature to 0
	MaxTokens     int
	JSONSchema    map[string]any // schema constraint for structured output
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionResponse represents the backend response.
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Provider is the core abstraction over inference backends.
type Provider interface {
	// Complete sends a completion request and returns the raw JSON body.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider identifier.
	Name() string

	// SupportsJSONSchema returns true if provider has native JSON mode.
	SupportsJSONSchema() bool
}

// ProviderConfig holds common configuration for providers.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string // for custom endpoints
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultProviderConfig returns sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout: 60 * time.Second,
	}
}
