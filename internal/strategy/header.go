package strategy

import (
	"math"

	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// HeaderAnchored finds a header row among the leading lines and builds
// column spans around the header cells. A real header names the column
// types directly, which beats inferring them from cell content.
type HeaderAnchored struct {
	det *columns.Detector
	cfg config.StrategyConfig
}

func NewHeaderAnchored(det *columns.Detector, cfg config.StrategyConfig) *HeaderAnchored {
	return &HeaderAnchored{det: det, cfg: cfg}
}

func (h *HeaderAnchored) Name() string { return "header" }

func (h *HeaderAnchored) Detect(lines []models.Line) []models.ColumnBoundary {
	headerIdx, cells := h.findHeader(lines)
	if headerIdx < 0 {
		return nil
	}

	body := lines[headerIdx+1:]
	if len(body) == 0 {
		return nil
	}

	minX, maxX := regionExtent(lines)
	spans := headerSpans(cells, minX, maxX)
	bs := h.det.Classify(body, spans)

	// The header's own words override content inference.
	for i := range bs {
		if i < len(cells) && cells[i].kind != models.ColUnknown {
			bs[i].Type = cells[i].kind
			bs[i].Confidence = math.Max(bs[i].Confidence, 0.95)
		}
	}
	return bs
}

// headerCell is one recognized header token group with its position.
type headerCell struct {
	x0, x1 float64
	kind   models.ColumnType
}

// findHeader scans the leading lines for one whose tokens match enough
// distinct column keywords. Adjacent tokens are joined first so that
// two-word headers like "Value Date" match.
func (h *HeaderAnchored) findHeader(lines []models.Line) (int, []headerCell) {
	limit := h.cfg.HeaderScanLines
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		cells := headerCells(lines[i])
		categories := map[models.ColumnType]bool{}
		for _, c := range cells {
			if c.kind != models.ColUnknown {
				categories[c.kind] = true
			}
		}
		if len(categories) >= h.cfg.MinHeaderCategories {
			return i, cells
		}
	}
	return -1, nil
}

// headerCells greedily joins up to three adjacent tokens and keeps the
// longest join that matches a keyword; unmatched tokens stand alone.
func headerCells(line models.Line) []headerCell {
	toks := line.Tokens
	var cells []headerCell
	for i := 0; i < len(toks); {
		matched := false
		for n := 3; n >= 1; n-- {
			if i+n > len(toks) {
				continue
			}
			text := toks[i].Text
			for j := i + 1; j < i+n; j++ {
				text += " " + toks[j].Text
			}
			if kind, ok := columns.HeaderKeywordType(text); ok {
				cells = append(cells, headerCell{x0: toks[i].X0, x1: toks[i+n-1].X1, kind: kind})
				i += n
				matched = true
				break
			}
		}
		if !matched {
			cells = append(cells, headerCell{x0: toks[i].X0, x1: toks[i].X1, kind: models.ColUnknown})
			i++
		}
	}
	return cells
}

// headerSpans widens the header cells to tile the region: each span
// reaches halfway to its neighbors, and the ends reach the extent.
func headerSpans(cells []headerCell, minX, maxX float64) []columns.Span {
	spans := make([]columns.Span, len(cells))
	for i, c := range cells {
		s := columns.Span{X0: c.x0, X1: c.x1}
		if i == 0 {
			s.X0 = minX
		} else {
			s.X0 = (cells[i-1].x1 + c.x0) / 2
		}
		if i == len(cells)-1 {
			s.X1 = maxX
		} else {
			s.X1 = (c.x1 + cells[i+1].x0) / 2
		}
		spans[i] = s
	}
	return spans
}

func regionExtent(lines []models.Line) (minX, maxX float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		if l.MinX() < minX {
			minX = l.MinX()
		}
		if l.MaxX() > maxX {
			maxX = l.MaxX()
		}
	}
	return minX, maxX
}
