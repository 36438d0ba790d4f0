package strategy

import (
	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Geometry is the baseline strategy: the coverage-histogram gutter
// detector with content classification.
type Geometry struct {
	det *columns.Detector
}

func NewGeometry(det *columns.Detector) *Geometry { return &Geometry{det: det} }

func (g *Geometry) Name() string { return "geometry" }

func (g *Geometry) Detect(lines []models.Line) []models.ColumnBoundary {
	return g.det.Detect(lines)
}
