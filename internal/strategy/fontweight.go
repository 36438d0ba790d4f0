package strategy

import (
	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// FontWeight anchors on a bold header row. Statements that label their
// columns in a bold face give away the header line even when the words
// are nonstandard, so the bold tokens' positions seed the spans. With
// no usable bold line it degrades to plain gutter detection.
type FontWeight struct {
	det *columns.Detector
}

func NewFontWeight(det *columns.Detector) *FontWeight { return &FontWeight{det: det} }

func (f *FontWeight) Name() string { return "fontweight" }

func (f *FontWeight) Detect(lines []models.Line) []models.ColumnBoundary {
	headerIdx := -1
	for i, l := range lines {
		if len(l.Tokens) >= 3 && allBold(l) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx == len(lines)-1 {
		return f.det.Detect(lines)
	}

	cells := headerCells(lines[headerIdx])
	minX, maxX := regionExtent(lines)
	spans := headerSpans(cells, minX, maxX)
	body := lines[headerIdx+1:]

	bs := f.det.Classify(body, spans)
	for i := range bs {
		if i < len(cells) && cells[i].kind != models.ColUnknown {
			bs[i].Type = cells[i].kind
			if bs[i].Confidence < 0.9 {
				bs[i].Confidence = 0.9
			}
		}
	}
	return bs
}

func allBold(l models.Line) bool {
	for _, t := range l.Tokens {
		if !t.Bold {
			return false
		}
	}
	return len(l.Tokens) > 0
}
