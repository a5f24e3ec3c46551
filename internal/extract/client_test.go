package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confield/confield/internal/contract"
	"github.com/confield/confield/internal/llm"
)

// stubProvider returns a fixed response, standing in for the inference
// backend under deterministic decoding.
type stubProvider struct {
	content string
	err     error
	calls   int
	lastReq llm.CompletionRequest
}

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return llm.CompletionResponse{}, s.err
	}
	return llm.CompletionResponse{Content: s.content, FinishReason: "stop"}, nil
}

func (s *stubProvider) Name() string             { return "stub" }
func (s *stubProvider) SupportsJSONSchema() bool { return true }

func mustContract(t *testing.T, name string) contract.FieldContract {
	t.Helper()
	reg, err := contract.DefaultRegistry()
	require.NoError(t, err)
	fc, ok := reg.Lookup(name)
	require.True(t, ok)
	return fc
}

func TestExtractField_Value(t *testing.T) {
	stub := &stubProvider{content: `{"currency":"USD"}`}
	client := NewClient(stub)
	fc := mustContract(t, "currency")

	value, err := client.ExtractField(context.Background(), "Net Consideration : USD 29,851,455.46", fc)
	require.NoError(t, err)
	assert.Equal(t, "USD", value)

	// Request construction: system instruction, exemplar block, literal
	// input, JSON-only directive, deterministic decoding, schema constraint.
	assert.Equal(t, fc.Instruction, stub.lastReq.System)
	assert.Contains(t, stub.lastReq.User, fc.Exemplars)
	assert.Contains(t, stub.lastReq.User, "Net Consideration : USD 29,851,455.46")
	assert.Contains(t, stub.lastReq.User, "Return ONLY the JSON object.")
	assert.True(t, stub.lastReq.Deterministic)
	assert.Equal(t, fc.ResponseSchema, stub.lastReq.JSONSchema)
}

func TestExtractField_NullValue(t *testing.T) {
	stub := &stubProvider{content: `{"currency":null}`}
	client := NewClient(stub)

	value, err := client.ExtractField(context.Background(), "QUANTITY: 20,000,000.00", mustContract(t, "currency"))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestExtractField_MissingKeyIsNull(t *testing.T) {
	stub := &stubProvider{content: `{}`}
	client := NewClient(stub)

	value, err := client.ExtractField(context.Background(), "text", mustContract(t, "currency"))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestExtractField_BlankStringIsNull(t *testing.T) {
	stub := &stubProvider{content: `{"currency":"   "}`}
	client := NewClient(stub)

	value, err := client.ExtractField(context.Background(), "text", mustContract(t, "currency"))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestExtractField_MalformedJSON(t *testing.T) {
	stub := &stubProvider{content: `the currency is USD`}
	client := NewClient(stub)

	_, err := client.ExtractField(context.Background(), "text", mustContract(t, "currency"))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "currency", malformed.Field)
}

func TestExtractField_BackendError(t *testing.T) {
	cause := errors.New("connection refused")
	stub := &stubProvider{err: cause}
	client := NewClient(stub)

	_, err := client.ExtractField(context.Background(), "text", mustContract(t, "currency"))
	var backend *BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "stub", backend.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestExtractField_DirectionDomain(t *testing.T) {
	fc := mustContract(t, "buy_sell")

	client := NewClient(&stubProvider{content: `{"direction":"payable_to_us"}`})
	value, err := client.ExtractField(context.Background(), "We bought from you", fc)
	require.NoError(t, err)
	assert.Equal(t, "payable_to_us", value)

	// A value outside the sanctioned domain is never passed through.
	client = NewClient(&stubProvider{content: `{"direction":"sideways"}`})
	_, err = client.ExtractField(context.Background(), "text", fc)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractField_DateNormalized(t *testing.T) {
	fc := mustContract(t, "settlement_date")

	client := NewClient(&stubProvider{content: `{"value_or_settlement_date":"October 21, 2025"}`})
	value, err := client.ExtractField(context.Background(), "SETT DATE: October 21, 2025", fc)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-21", value)

	client = NewClient(&stubProvider{content: `{"value_or_settlement_date":"not a date"}`})
	_, err = client.ExtractField(context.Background(), "text", fc)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractField_NumberType(t *testing.T) {
	fc := mustContract(t, "settlement_amount")

	client := NewClient(&stubProvider{content: `{"settlement_amount":29851455.46}`})
	value, err := client.ExtractField(context.Background(), "text", fc)
	require.NoError(t, err)
	assert.Equal(t, 29851455.46, value)

	client = NewClient(&stubProvider{content: `{"settlement_amount":"29,851,455.46"}`})
	_, err = client.ExtractField(context.Background(), "text", fc)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractField_ISINShape(t *testing.T) {
	fc := mustContract(t, "isin")

	client := NewClient(&stubProvider{content: `{"isin":"US9127123213"}`})
	value, err := client.ExtractField(context.Background(), "ISIN: US9127123213", fc)
	require.NoError(t, err)
	assert.Equal(t, "US9127123213", value)

	client = NewClient(&stubProvider{content: `{"isin":"912828XG8"}`})
	_, err = client.ExtractField(context.Background(), "text", fc)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractField_Deterministic(t *testing.T) {
	// Under deterministic decoding, identical input yields identical output.
	stub := &stubProvider{content: `{"currency":"EUR"}`}
	client := NewClient(stub)
	fc := mustContract(t, "currency")

	first, err := client.ExtractField(context.Background(), "Amount: EUR 100.00", fc)
	require.NoError(t, err)
	second, err := client.ExtractField(context.Background(), "Amount: EUR 100.00", fc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, stub.calls)
}
