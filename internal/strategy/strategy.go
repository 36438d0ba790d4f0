// Package strategy runs several independent column-detection
// approaches over a table region and picks the one whose result scores
// best. Layouts that defeat pure geometry often carry a header row or
// a consistent token count that another approach can anchor on.
package strategy

import (
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Strategy is one way of deriving column boundaries from a region.
type Strategy interface {
	Name() string
	Detect(lines []models.Line) []models.ColumnBoundary
}

// Result is one strategy's outcome for a region.
type Result struct {
	Strategy   string
	Boundaries []models.ColumnBoundary
	Metrics    Metrics
	Score      float64
}
