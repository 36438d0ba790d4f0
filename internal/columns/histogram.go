// Package columns infers column structure from token geometry: a 1-D
// coverage histogram finds the gutters between columns, per-column
// content scoring assigns semantic types, and a cross-table reconciler
// merges the per-region results into one document-wide column map.
package columns

import (
	"math"

	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Density classifies how crowded a document's lines are. The gutter
// thresholds adapt to it: a dense statement has narrow true gutters
// that a fixed threshold would miss, while a sparse one is full of
// accidental whitespace that a fixed threshold would split on.
type Density int

const (
	DensitySparse Density = iota
	DensityNormal
	DensityDense
)

func (d Density) String() string {
	switch d {
	case DensitySparse:
		return "sparse"
	case DensityDense:
		return "dense"
	default:
		return "normal"
	}
}

// Span is a column's horizontal extent before classification.
type Span struct {
	X0, X1 float64
}

// Detector finds and classifies column boundaries for a set of lines.
type Detector struct {
	cfg config.ColumnConfig
}

// NewDetector returns a detector with the given tuning.
func NewDetector(cfg config.ColumnConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs gutter detection and content classification in one step.
func (d *Detector) Detect(lines []models.Line) []models.ColumnBoundary {
	return d.Classify(lines, d.FindSpans(lines))
}

// ClassifyDensity buckets the lines by average tokens per line.
func (d *Detector) ClassifyDensity(lines []models.Line) Density {
	if len(lines) == 0 {
		return DensityNormal
	}
	total := 0
	for _, l := range lines {
		total += len(l.Tokens)
	}
	avg := float64(total) / float64(len(lines))
	switch {
	case avg >= d.cfg.DenseTokensPerLine:
		return DensityDense
	case avg <= d.cfg.SparseTokensPerLine:
		return DensitySparse
	default:
		return DensityNormal
	}
}

// thresholds returns the coverage fraction and minimum gutter width for
// the document's density class.
func (d *Detector) thresholds(density Density) (coverage, minGutter float64) {
	switch density {
	case DensityDense:
		return d.cfg.DenseCoverage, d.cfg.DenseGutter
	case DensitySparse:
		return d.cfg.SparseCoverage, d.cfg.SparseGutter
	default:
		return d.cfg.NormalCoverage, d.cfg.NormalGutter
	}
}

// FindSpans builds a coverage histogram of token x-extents and returns
// the column spans between low-coverage gutters. Bins are one page unit
// wide; a bin's coverage is the number of lines with a token over it.
func (d *Detector) FindSpans(lines []models.Line) []Span {
	if len(lines) == 0 {
		return nil
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		for _, t := range l.Tokens {
			if t.X0 < minX {
				minX = t.X0
			}
			if t.X1 > maxX {
				maxX = t.X1
			}
		}
	}
	if minX >= maxX {
		return nil
	}

	numBins := int(maxX-minX) + 1
	coverage := make([]int, numBins)
	for _, l := range lines {
		seen := make(map[int]bool)
		for _, t := range l.Tokens {
			start := int(t.X0 - minX)
			end := int(t.X1 - minX)
			for b := start; b <= end && b < numBins; b++ {
				if b >= 0 && !seen[b] {
					seen[b] = true
					coverage[b]++
				}
			}
		}
	}

	density := d.ClassifyDensity(lines)
	coverFrac, minGutter := d.thresholds(density)
	threshold := coverFrac * float64(len(lines))

	// Gutters are maximal runs of low-coverage bins at least minGutter
	// wide; spans are what is left between them.
	var spans []Span
	spanStart := -1
	gutterRun := 0
	for b := 0; b <= numBins; b++ {
		low := b == numBins || float64(coverage[b]) <= threshold
		if low {
			gutterRun++
			if spanStart >= 0 && (float64(gutterRun) >= minGutter || b == numBins) {
				spans = append(spans, Span{
					X0: minX + float64(spanStart),
					X1: minX + float64(b-gutterRun) + 1,
				})
				spanStart = -1
			}
			continue
		}
		if spanStart >= 0 && gutterRun > 0 && float64(gutterRun) < minGutter {
			// Narrow dip inside a column; keep extending the span.
			gutterRun = 0
			continue
		}
		if spanStart < 0 {
			spanStart = b
		}
		gutterRun = 0
	}

	// Drop slivers that cover no token centers.
	out := spans[:0]
	for _, s := range spans {
		if s.X1-s.X0 >= 2 {
			out = append(out, s)
		}
	}
	return out
}
