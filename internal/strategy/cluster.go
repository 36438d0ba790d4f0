package strategy

import (
	"math"
	"sort"

	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// ClusterCount keys on the dominant token count: the lines sharing the
// most common count are taken as clean single-cell-per-column rows, and
// their token extents are averaged per position into spans. Works when
// a noisy region drowns the histogram but most rows are well formed.
type ClusterCount struct {
	det *columns.Detector
}

func NewClusterCount(det *columns.Detector) *ClusterCount { return &ClusterCount{det: det} }

func (c *ClusterCount) Name() string { return "cluster" }

func (c *ClusterCount) Detect(lines []models.Line) []models.ColumnBoundary {
	counts := map[int]int{}
	for _, l := range lines {
		counts[len(l.Tokens)]++
	}
	dominant, votes := 0, 0
	for n, v := range counts {
		if n >= 2 && (v > votes || (v == votes && n > dominant)) {
			dominant, votes = n, v
		}
	}
	if dominant == 0 || votes < 2 {
		return nil
	}

	sums := make([]struct{ x0, x1 float64 }, dominant)
	n := 0
	for _, l := range lines {
		if len(l.Tokens) != dominant {
			continue
		}
		toks := append([]models.Token(nil), l.Tokens...)
		sort.Slice(toks, func(i, j int) bool { return toks[i].X0 < toks[j].X0 })
		for i, t := range toks {
			sums[i].x0 += t.X0
			sums[i].x1 += t.X1
		}
		n++
	}

	spans := make([]columns.Span, dominant)
	for i, s := range sums {
		spans[i] = columns.Span{X0: s.x0 / float64(n), X1: s.x1 / float64(n)}
	}

	// Widen each span halfway toward its neighbors so tokens from the
	// non-dominant lines still project into a column.
	for i := range spans {
		if i > 0 {
			mid := (spans[i-1].X1 + spans[i].X0) / 2
			if mid < spans[i].X0 {
				spans[i].X0 = mid
			}
		}
		if i < len(spans)-1 {
			mid := (spans[i].X1 + spans[i+1].X0) / 2
			if mid > spans[i].X1 {
				spans[i].X1 = mid
			}
		}
	}
	clampOverlaps(spans)

	return c.det.Classify(lines, spans)
}

// clampOverlaps forces spans to stay disjoint after widening.
func clampOverlaps(spans []columns.Span) {
	for i := 1; i < len(spans); i++ {
		if spans[i].X0 < spans[i-1].X1 {
			mid := (spans[i-1].X1 + spans[i].X0) / 2
			mid = math.Max(mid, spans[i-1].X0)
			spans[i-1].X1 = mid
			spans[i].X0 = mid
		}
	}
}
