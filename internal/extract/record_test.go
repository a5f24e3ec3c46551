package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRecord_ISINOnly(t *testing.T) {
	stub := &stubProvider{
		content: `{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":"US9127123213","value_or_settlement_date":null,"standard_settlement_instruction":null}`,
	}
	client := NewClient(stub)

	record, err := client.ExtractRecord(context.Background(), "ISIN: US9127123213")
	require.NoError(t, err)

	require.NotNil(t, record.ISIN)
	assert.Equal(t, "US9127123213", *record.ISIN)
	require.NotNil(t, record.Direction)
	assert.Equal(t, "unknown", *record.Direction)
	assert.Nil(t, record.Currency)
	assert.Nil(t, record.SettlementAmount)
	assert.Nil(t, record.NominalAmountOrQuantity)
	assert.Nil(t, record.ValueOrSettlementDate)
	assert.Nil(t, record.StandardSettlementInstruction)

	assert.Equal(t, recordSystemPrompt, stub.lastReq.System)
	assert.True(t, stub.lastReq.Deterministic)
	assert.Equal(t, RecordSchema(), stub.lastReq.JSONSchema)
}

func TestExtractRecord_NetConsideration(t *testing.T) {
	stub := &stubProvider{
		content: `{"currency":"USD","settlement_amount":29851455.46,"nominal_amount_or_quantity":null,"direction":"unknown","isin":null,"value_or_settlement_date":null,"standard_settlement_instruction":null}`,
	}
	client := NewClient(stub)

	record, err := client.ExtractRecord(context.Background(), "Net Consideration : USD   29,851,455.46")
	require.NoError(t, err)

	require.NotNil(t, record.Currency)
	assert.Equal(t, "USD", *record.Currency)
	require.NotNil(t, record.SettlementAmount)
	assert.Equal(t, 29851455.46, *record.SettlementAmount)
}

func TestExtractRecord_DateNormalizedInPlace(t *testing.T) {
	stub := &stubProvider{
		content: `{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":null,"value_or_settlement_date":"October 21, 2025","standard_settlement_instruction":null}`,
	}
	client := NewClient(stub)

	record, err := client.ExtractRecord(context.Background(), "SETT DATE: October 21, 2025")
	require.NoError(t, err)

	require.NotNil(t, record.ValueOrSettlementDate)
	assert.Equal(t, "2025-10-21", *record.ValueOrSettlementDate)
}

func TestExtractRecord_InvalidDirection(t *testing.T) {
	stub := &stubProvider{
		content: `{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"outbound","isin":null,"value_or_settlement_date":null,"standard_settlement_instruction":null}`,
	}
	client := NewClient(stub)

	_, err := client.ExtractRecord(context.Background(), "text")
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "record", malformed.Field)
}

func TestExtractRecord_InvalidISIN(t *testing.T) {
	stub := &stubProvider{
		content: `{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":"912828XG8","value_or_settlement_date":null,"standard_settlement_instruction":null}`,
	}
	client := NewClient(stub)

	_, err := client.ExtractRecord(context.Background(), "CUSIP: 912828XG8")
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractRecord_MalformedJSON(t *testing.T) {
	stub := &stubProvider{content: `Here is the extracted data: {"currency"`}
	client := NewClient(stub)

	_, err := client.ExtractRecord(context.Background(), "text")
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestRecordSchema_AllFieldsRequired(t *testing.T) {
	schema := RecordSchema()

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	want := []string{
		"currency",
		"settlement_amount",
		"nominal_amount_or_quantity",
		"direction",
		"isin",
		"value_or_settlement_date",
		"standard_settlement_instruction",
	}
	for _, key := range want {
		assert.Contains(t, props, key)
	}
	assert.Len(t, schema["required"], len(want))
}
