package models

// InstitutionHint is a declarative per-institution record from the hint
// registry. Hints raise confidence or resolve ambiguity; the pipeline
// never requires one to be correct.
type InstitutionHint struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`

	// Extra literal patterns merged into the built-in sets.
	SkipPatterns    []string `yaml:"skip_patterns" json:"skipPatterns,omitempty"`
	OpeningPatterns []string `yaml:"opening_patterns" json:"openingPatterns,omitempty"`
	ClosingPatterns []string `yaml:"closing_patterns" json:"closingPatterns,omitempty"`

	// ColumnOrder, when set, is the expected left-to-right column layout.
	ColumnOrder []ColumnType `yaml:"column_order" json:"columnOrder,omitempty"`

	// MergedAmount marks statements that use a single signed/suffixed
	// amount column instead of separate debit and credit columns.
	MergedAmount bool `yaml:"merged_amount" json:"mergedAmount,omitempty"`

	// Currency is the ISO 4217 code the institution reports in, used to
	// pick the balance tolerance when the document itself has no clue.
	Currency string `yaml:"currency" json:"currency,omitempty"`
}
