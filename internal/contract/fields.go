package contract

// The canonical contracts target the confirmation_data table: one source
// column and one result column per field, keyed by the field name.

const instructionPreamble = `You are a deterministic information extraction engine for financial trade confirmations.

General rules:
- Output MUST be valid JSON only.
- Do NOT include markdown, commentary, or explanations.
- Always return the field defined in the JSON schema.
- If the field cannot be identified with high confidence, return null.
- Never infer or guess missing information.

`

const currencyInstruction = instructionPreamble + `Extract the ISO 3-letter currency code associated with the final net cash amount to be settled.
If the currency cannot be reliably linked to the settlement amount, return null.`

const currencyExemplars = `Example:
"Net Consideration : USD   29,851,455.46"
Output:
{"currency":"USD"}

Example:
"QUANTITY: 20,000,000.00"
Output:
{"currency":null}`

const settlementAmountInstruction = instructionPreamble + `Extract the FINAL net cash amount to be settled.
- Prefer labels such as "Net Amount", "Net Consideration", "Settlement Amount", "Sett Amt".
- If multiple amounts appear, prefer settlement amount over net amount; ignore gross amounts, principal, clean price, accrued interest alone.
- Parentheses or a leading minus sign indicate negative values.
- Return a numeric value without separators.`

const settlementAmountExemplars = `Example:
"Net Consideration : USD   29,851,455.46"
Output:
{"settlement_amount":29851455.46}

Example:
"Settlement Amount: (1,250.00)"
Output:
{"settlement_amount":-1250.00}

Example:
"ISIN: US9127123213"
Output:
{"settlement_amount":null}`

const buySellInstruction = instructionPreamble + `Determine the cash flow direction, only if explicitly stated:
- "payable by you", "you bought", "we sold to you" means payable_by_us
- "payable to you", "you sold", "we bought from you" means payable_to_us
If direction is not explicitly stated or is ambiguous, return "unknown".`

const buySellExemplars = `Example:
"The net amount is payable by you on settlement date."
Output:
{"direction":"payable_by_us"}

Example:
"We bought from you 500,000 units."
Output:
{"direction":"payable_to_us"}

Example:
"Net Consideration : USD   29,851,455.46"
Output:
{"direction":"unknown"}`

const isinInstruction = instructionPreamble + `Extract the ISIN when explicitly labeled as "ISIN".
- The ISIN must be a 12-character alphanumeric code.
- Do NOT infer the ISIN from a CUSIP or a security name.`

const isinExemplars = `Example:
"ISIN: US9127123213"
Output:
{"isin":"US9127123213"}

Example:
"CUSIP: 912828XG8"
Output:
{"isin":null}`

const settlementDateInstruction = instructionPreamble + `Extract the Value Date or Settlement Date when explicitly present.
- Prefer Settlement Date over Value Date if both exist.
- Normalize dates to ISO format: YYYY-MM-DD.
- Do NOT infer dates from trade date or context.`

const settlementDateExemplars = `Example:
"SETT DATE: October 21, 2025"
Output:
{"value_or_settlement_date":"2025-10-21"}

Example:
"Value Date               : 01-Oct-25"
Output:
{"value_or_settlement_date":"2025-10-01"}

Example:
"Trade Date: 2025-09-28"
Output:
{"value_or_settlement_date":null}`

const ssiInstruction = instructionPreamble + `Extract settlement instructions when explicitly provided, such as "Our SSIs", "Settlement Instructions", "Delivery Versus Payment".
- Preserve meaningful instruction identifiers (e.g., PSET, BIC, account).
- Condense multi-line instructions into a single readable string, joining lines with " | ".
- Do NOT fabricate or complete missing instructions.`

const ssiExemplars = `Example:
"Our SSIs: PSET FFFF33"
Output:
{"standard_settlement_instruction":"PSET FFFF33"}

Example:
"Our Settlement Instructions
        BANK OF NEW YORK, NEW YORK (BDS)
        FXF"
Output:
{"standard_settlement_instruction":"BANK OF NEW YORK, NEW YORK (BDS) | FXF"}

Example:
"Net Consideration : USD   29,851,455.46"
Output:
{"standard_settlement_instruction":null}`

// DefaultRegistry returns the canonical contract set for the
// confirmation_data table. The order here is the processing order.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(
		FieldContract{
			Name:         "currency",
			SourceColumn: "currency",
			ResultColumn: "currency_result",
			Instruction:  currencyInstruction,
			Exemplars:    currencyExemplars,
			ResponseKey:  "currency",
			Kind:         KindText,
		},
		FieldContract{
			Name:         "settlement_amount",
			SourceColumn: "settlement_amount",
			ResultColumn: "settlement_amount_result",
			Instruction:  settlementAmountInstruction,
			Exemplars:    settlementAmountExemplars,
			ResponseKey:  "settlement_amount",
			Kind:         KindNumber,
		},
		FieldContract{
			Name:         "buy_sell",
			SourceColumn: "buy_sell",
			ResultColumn: "buy_sell_result",
			Instruction:  buySellInstruction,
			Exemplars:    buySellExemplars,
			ResponseKey:  "direction",
			Kind:         KindDirection,
		},
		FieldContract{
			Name:         "isin",
			SourceColumn: "isin",
			ResultColumn: "isin_result",
			Instruction:  isinInstruction,
			Exemplars:    isinExemplars,
			ResponseKey:  "isin",
			Kind:         KindISIN,
		},
		FieldContract{
			Name:         "settlement_date",
			SourceColumn: "settlement_date",
			ResultColumn: "settlement_date_result",
			Instruction:  settlementDateInstruction,
			Exemplars:    settlementDateExemplars,
			ResponseKey:  "value_or_settlement_date",
			Kind:         KindDate,
		},
		FieldContract{
			Name:         "SSI",
			SourceColumn: "SSI",
			ResultColumn: "SSI_result",
			Instruction:  ssiInstruction,
			Exemplars:    ssiExemplars,
			ResponseKey:  "standard_settlement_instruction",
			Kind:         KindText,
		},
	)
}
