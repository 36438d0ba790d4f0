package models

// ColumnType is the inferred meaning of a detected column.
type ColumnType string

const (
	ColDate        ColumnType = "date"
	ColValueDate   ColumnType = "value_date"
	ColDescription ColumnType = "description"
	ColDebit       ColumnType = "debit"
	ColCredit      ColumnType = "credit"
	ColBalance     ColumnType = "balance"
	ColAmount      ColumnType = "amount" // merged debit/credit column
	ColReference   ColumnType = "reference"
	ColUnknown     ColumnType = "unknown"
)

// IsNumeric reports whether cells of this column type carry monetary values.
func (c ColumnType) IsNumeric() bool {
	switch c {
	case ColDebit, ColCredit, ColBalance, ColAmount:
		return true
	}
	return false
}

// ColumnBoundary is an x-range on the page together with the inferred
// column type. Within a table the boundaries are ordered left to right
// and do not overlap.
type ColumnBoundary struct {
	X0         float64    `json:"x0"`
	X1         float64    `json:"x1"`
	Type       ColumnType `json:"type"`
	Confidence float64    `json:"confidence"` // 0..1
}

// Contains reports whether an x coordinate falls inside the boundary.
func (b ColumnBoundary) Contains(x float64) bool {
	return x >= b.X0 && x <= b.X1
}

// TableRegion is a contiguous run of lines with consistent column
// cardinality. A region may span more than one page; it owns its lines
// and, once detection has run, its resolved boundaries.
type TableRegion struct {
	Lines      []Line
	FirstPage  int
	LastPage   int
	Boundaries []ColumnBoundary
}

// AvgTokensPerLine returns the mean token count across the region's lines.
func (r TableRegion) AvgTokensPerLine() float64 {
	if len(r.Lines) == 0 {
		return 0
	}
	n := 0
	for _, l := range r.Lines {
		n += len(l.Tokens)
	}
	return float64(n) / float64(len(r.Lines))
}
