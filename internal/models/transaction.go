package models

// ValidationStatus is the outcome of the balance-chain check for one row.
type ValidationStatus string

const (
	StatusValid       ValidationStatus = "valid"
	StatusWarning     ValidationStatus = "warning"
	StatusError       ValidationStatus = "error"
	StatusUnvalidated ValidationStatus = "unvalidated"
)

// StitchedTransaction is one logical transaction: exactly one primary
// row plus zero or more continuation rows folded into its description.
// All fields are still raw statement text at this stage.
type StitchedTransaction struct {
	RawDate       string
	Description   string
	DebitRaw      string
	CreditRaw     string
	AmountRaw     string // merged debit/credit cell, split later
	BalanceRaw    string
	ValueDateRaw  string
	ReferenceRaw  string
	Pages         []int
	Continuations int
	TokenCount    int
}

// ParsedTransaction is a fully normalized transaction record. Debit and
// Credit are nullable: a nil pointer means the side was absent, not zero.
// When a date or amount fails to parse the raw text is preserved and the
// normalized field left unset; the row is never dropped.
type ParsedTransaction struct {
	Date          string   `json:"date"` // ISO-8601, "" when unparsed
	RawDate       string   `json:"rawDate,omitempty"`
	Description   string   `json:"description"`
	Debit         *float64 `json:"debit"`
	Credit        *float64 `json:"credit"`
	Balance       *float64 `json:"balance"`
	RawBalance    string   `json:"rawBalance,omitempty"`
	Reference     string   `json:"reference,omitempty"`
	ReferenceType string   `json:"referenceType,omitempty"`

	Status      ValidationStatus `json:"status"`
	Discrepancy float64          `json:"discrepancy,omitempty"`
	Overdraft   bool             `json:"overdraft,omitempty"`
	Note        string           `json:"note,omitempty"`

	Pages []int `json:"pages"`
}

// DocumentSegment is a maximal transaction run governed by one opening
// balance. Concatenated statements produce several segments, each
// validated independently.
type DocumentSegment struct {
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
	// DerivedOpening is set when no opening-balance row existed and the
	// opening balance was reconstructed from the first transaction.
	DerivedOpening bool `json:"derivedOpening,omitempty"`
	DerivedClosing bool `json:"derivedClosing,omitempty"`

	Transactions []ParsedTransaction `json:"transactions"`

	ValidCount   int `json:"validCount"`
	WarningCount int `json:"warningCount"`
	ErrorCount   int `json:"errorCount"`
}
