package models

// RowTrace captures what the pipeline did with each table line. Kept in
// the diagnostics bundle for debugging and regression tests.
type RowTrace struct {
	Page   int     `json:"page"`
	Text   string  `json:"text"`
	Kind   RowKind `json:"kind"`
	Tokens int     `json:"tokens"`
}

// Diagnostics is the observability bundle returned alongside the
// transaction list.
type Diagnostics struct {
	Strategy       string             `json:"strategy"`
	StrategyScores map[string]float64 `json:"strategyScores"`
	LowConfidence  bool               `json:"lowConfidence"`

	ColumnMap []ColumnBoundary `json:"columnMap"`

	Pages          int `json:"pages"`
	LinesTotal     int `json:"linesTotal"`
	RegionCount    int `json:"regionCount"`
	RowsSkipped    int `json:"rowsSkipped"`
	RowsStitched   int `json:"rowsStitched"`
	RowsExtracted  int `json:"rowsExtracted"`
	SegmentCount   int `json:"segmentCount"`
	NumberGrouping string `json:"numberGrouping,omitempty"`
	Currency       string `json:"currency,omitempty"`

	Institution string `json:"institution,omitempty"`
	Account     AccountInfo `json:"account,omitempty"`

	RowTrace []RowTrace `json:"rowTrace,omitempty"`
}

// AccountInfo holds statement metadata scraped from non-table lines.
type AccountInfo struct {
	Holder   string `json:"holder,omitempty"`
	Number   string `json:"number,omitempty"`
	SortCode string `json:"sortCode,omitempty"`
	Period   string `json:"period,omitempty"`
}
