package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/llm"
)

// TradeRecord holds all seven canonical fields produced by one
// whole-document extraction call. Each field is independently nullable.
type TradeRecord struct {
	Currency                      *string  `json:"currency"`
	SettlementAmount              *float64 `json:"settlement_amount"`
	NominalAmountOrQuantity       *float64 `json:"nominal_amount_or_quantity"`
	Direction                     *string  `json:"direction"`
	ISIN                          *string  `json:"isin" validate:"omitempty,len=12,alphanum,uppercase"`
	ValueOrSettlementDate         *string  `json:"value_or_settlement_date"`
	StandardSettlementInstruction *string  `json:"standard_settlement_instruction"`
}

const recordSystemPrompt = `You are a deterministic information extraction engine for financial trade confirmations.

Objective:
Extract structured trade information from unstructured trade confirmation text.

You must identify and extract the following properties when present:
- currency
- settlement_amount
- nominal_amount_or_quantity
- direction
- isin
- value_or_settlement_date
- standard_settlement_instruction

General rules:
- Output MUST be valid JSON only.
- Do NOT include markdown, commentary, or explanations.
- Always return all fields defined in the JSON schema.
- If a field cannot be identified with high confidence, return null for that field.
- Never infer or guess missing information.

Field-specific extraction rules:

1. settlement_amount (final net cash amount)
- Extract the FINAL net cash amount to be settled.
- Prefer labels such as "Net Amount", "Net Consideration", "Settlement Amount", "Sett Amt".
- If multiple amounts appear, prefer settlement amount over net amount; ignore gross amounts, principal, clean price, accrued interest alone.
- Parentheses or a leading minus sign indicate negative values.

2. currency
- Extract the ISO 3-letter currency code associated with the extracted amount.
- If the currency cannot be reliably linked to the amount, return null.

3. direction
- Determine cash flow direction only if explicitly stated:
  - "payable by you", "you bought", "we sold to you" -> payable_by_us
  - "payable to you", "you sold", "we bought from you" -> payable_to_us
- If direction is not explicitly stated or ambiguous, return "unknown".

4. nominal_amount_or_quantity
- Extract the trade size or nominal value when explicitly labeled, such as "Quantity", "Nominal Amount", "Face Amount", "Principal Amount".
- Return a numeric value without separators.
- Do NOT derive quantity from price or consideration.

5. isin
- Extract the ISIN when explicitly labeled as "ISIN".
- ISIN must be a 12-character alphanumeric code.
- Do NOT infer ISIN from CUSIP or security name.

6. value_or_settlement_date
- Extract the Value Date or Settlement Date when explicitly present.
- Prefer Settlement Date over Value Date if both exist.
- Normalize dates to ISO format: YYYY-MM-DD.

7. standard_settlement_instruction
- Extract settlement instructions when explicitly provided, such as "Our SSIs", "Settlement Instructions", "Delivery Versus Payment".
- Preserve meaningful instruction identifiers (e.g., PSET, BIC, account).
- Condense multi-line instructions into a single readable string.

Failure handling:
- If no final net cash amount is present, return null for settlement_amount and currency.
- If the document does not contain trade economics, return null for all fields.`

const recordExemplars = `Example:
"ISIN: US9127123213"
Output:
{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":"US9127123213","value_or_settlement_date":null,"standard_settlement_instruction":null}

Example:
"Net Consideration : USD   29,851,455.46"
Output:
{"currency":"USD","settlement_amount":29851455.46,"nominal_amount_or_quantity":null,"direction":"unknown","isin":null,"value_or_settlement_date":null,"standard_settlement_instruction":null}

Example:
"QUANTITY: 20,000,000.00"
Output:
{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":20000000.0,"direction":"unknown","isin":null,"value_or_settlement_date":null,"standard_settlement_instruction":null}

Example:
"SETT DATE: October 21, 2025"
Output:
{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":null,"value_or_settlement_date":"2025-10-21","standard_settlement_instruction":null}

Example:
"Our Settlement Instructions
        BANK OF NEW YORK, NEW YORK (BDS)
        FXF"
Output:
{"currency":null,"settlement_amount":null,"nominal_amount_or_quantity":null,"direction":"unknown","isin":null,"value_or_settlement_date":null,"standard_settlement_instruction":"BANK OF NEW YORK, NEW YORK (BDS) | FXF"}`

// RecordSchema returns the canonical whole-record response schema: all
// seven keys always present, each nullable.
func RecordSchema() map[string]any {
	nullable := func(typ string) map[string]any {
		return map[string]any{"type": []string{typ, "null"}}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"currency":                   nullable("string"),
			"settlement_amount":          nullable("number"),
			"nominal_amount_or_quantity": nullable("number"),
			"direction": map[string]any{
				"type": []string{"string", "null"},
				"enum": []any{"payable_by_us", "payable_to_us", "unknown", nil},
			},
			"isin":                            nullable("string"),
			"value_or_settlement_date":        nullable("string"),
			"standard_settlement_instruction": nullable("string"),
		},
		"required": []any{
			"currency",
			"settlement_amount",
			"nominal_amount_or_quantity",
			"direction",
			"isin",
			"value_or_settlement_date",
			"standard_settlement_instruction",
		},
		"additionalProperties": false,
	}
}

// ExtractRecord issues a single extraction call covering all canonical
// fields at once. Used to populate new rows, not to update existing ones.
func (c *Client) ExtractRecord(ctx context.Context, text string) (*TradeRecord, error) {
	logger.Debug("extracting whole record",
		"provider", c.provider.Name(),
		"text_size", len(text))

	var sb strings.Builder
	sb.WriteString(recordExemplars)
	sb.WriteString("\n\nCONFIRMATION TEXT:\n\"\"\"")
	sb.WriteString(text)
	sb.WriteString("\"\"\"\n\nReturn ONLY the JSON object.")

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System:        recordSystemPrompt,
		User:          sb.String(),
		Deterministic: true,
		MaxTokens:     c.maxTokens,
		JSONSchema:    RecordSchema(),
	})
	if err != nil {
		return nil, &BackendError{Provider: c.provider.Name(), Err: err}
	}

	var record TradeRecord
	if err := json.Unmarshal([]byte(resp.Content), &record); err != nil {
		return nil, &MalformedResponseError{
			Field: "record",
			Raw:   truncateForError(resp.Content),
			Err:   err,
		}
	}

	if err := validateRecord(&record); err != nil {
		return nil, &MalformedResponseError{
			Field: "record",
			Raw:   truncateForError(resp.Content),
			Err:   err,
		}
	}

	return &record, nil
}

// validateRecord enforces the declared value domains and normalizes the
// date field in place.
func validateRecord(r *TradeRecord) error {
	if r.Direction != nil && !directions[*r.Direction] {
		return fmt.Errorf("direction %q outside sanctioned values", *r.Direction)
	}

	if err := validate.Struct(r); err != nil {
		return err
	}

	if r.ValueOrSettlementDate != nil {
		normalized, err := normalizeDate(*r.ValueOrSettlementDate)
		if err != nil {
			return err
		}
		date := normalized.(string)
		r.ValueOrSettlementDate = &date
	}

	return nil
}
