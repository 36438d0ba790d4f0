package models

// RowKind classifies what a table line turned out to be.
type RowKind string

const (
	RowTransaction    RowKind = "transaction"
	RowContinuation   RowKind = "continuation"
	RowOpeningBalance RowKind = "opening-balance"
	RowClosingBalance RowKind = "closing-balance"
	RowNoise          RowKind = "noise"
)

// ExtractedRow is a single line projected into named fields via the
// resolved column boundaries. Tokens whose center missed every boundary
// are counted in Unassigned so nothing silently disappears.
type ExtractedRow struct {
	Page       int
	Raw        string
	Fields     map[ColumnType]string
	Kind       RowKind
	TokenCount int
	Unassigned int
}

// Field returns the projected text for a column type, or "".
func (r ExtractedRow) Field(c ColumnType) string {
	return r.Fields[c]
}

// HasField reports whether the row has non-empty text under the column type.
func (r ExtractedRow) HasField(c ColumnType) bool {
	return r.Fields[c] != ""
}
