package strategy

import (
	"math"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

// Metrics summarizes how well a set of boundaries explains a region.
type Metrics struct {
	// Columns is the number of boundaries produced.
	Columns int
	// TypedColumns is how many resolved to a known semantic type.
	TypedColumns int
	// PlausibleRows is how many lines project to a date cell plus at
	// least one parseable numeric cell.
	PlausibleRows int
	// CoveredFrac is the fraction of tokens falling inside a boundary.
	CoveredFrac float64
	// MeanConfidence averages the boundaries' classification confidence.
	MeanConfidence float64
	// BalanceDeltaFrac is the fraction of consecutive plausible rows
	// whose balance delta matches one of the row's amount cells under a
	// coarse Western parse. The real chain check runs later with the
	// detected grouping; this is only a structural sanity signal.
	BalanceDeltaFrac float64
	// HasBalance and HasDate record the structurally required columns.
	HasBalance bool
	HasDate    bool
}

// Measure computes the metrics for boundaries over a region's lines.
func Measure(lines []models.Line, bs []models.ColumnBoundary) Metrics {
	m := Metrics{Columns: len(bs)}
	if len(bs) == 0 {
		return m
	}

	confSum := 0.0
	for _, b := range bs {
		if b.Type != models.ColUnknown {
			m.TypedColumns++
		}
		confSum += b.Confidence
		switch b.Type {
		case models.ColBalance:
			m.HasBalance = true
		case models.ColDate:
			m.HasDate = true
		}
	}
	m.MeanConfidence = confSum / float64(len(bs))

	type rowFigures struct {
		balance    float64
		hasBalance bool
		amounts    []float64
	}
	var figs []rowFigures

	tokens, covered := 0, 0
	for _, line := range lines {
		cells := map[models.ColumnType]string{}
		for _, t := range line.Tokens {
			tokens++
			for _, b := range bs {
				if b.Contains(t.CenterX()) {
					covered++
					if cells[b.Type] != "" {
						cells[b.Type] += " "
					}
					cells[b.Type] += t.Text
					break
				}
			}
		}
		if !normalize.LooksLikeDate(cells[models.ColDate]) {
			continue
		}
		for _, ct := range []models.ColumnType{models.ColBalance, models.ColAmount, models.ColDebit, models.ColCredit} {
			if normalize.LooksLikeAmount(cells[ct]) {
				m.PlausibleRows++
				break
			}
		}

		var fig rowFigures
		if v, _, err := normalize.ParseAmount(cells[models.ColBalance], normalize.GroupingWestern); err == nil {
			fig.balance, fig.hasBalance = v, true
		}
		for _, ct := range []models.ColumnType{models.ColAmount, models.ColDebit, models.ColCredit} {
			if cells[ct] == "" {
				continue
			}
			if v, _, err := normalize.ParseAmount(cells[ct], normalize.GroupingWestern); err == nil {
				fig.amounts = append(fig.amounts, v)
			}
		}
		figs = append(figs, fig)
	}
	if tokens > 0 {
		m.CoveredFrac = float64(covered) / float64(tokens)
	}

	pairs, passes := 0, 0
	for i := 1; i < len(figs); i++ {
		if !figs[i-1].hasBalance || !figs[i].hasBalance {
			continue
		}
		pairs++
		delta := math.Abs(figs[i].balance - figs[i-1].balance)
		for _, a := range figs[i].amounts {
			if math.Abs(delta-math.Abs(a)) <= 0.05 {
				passes++
				break
			}
		}
	}
	if pairs > 0 {
		m.BalanceDeltaFrac = float64(passes) / float64(pairs)
	}
	return m
}

// Score collapses metrics to a single comparable number. Plausible
// rows dominate, then semantic completeness, then coverage and
// confidence as tie breakers.
func Score(m Metrics) float64 {
	if m.Columns == 0 {
		return 0
	}
	s := float64(m.PlausibleRows) * 10
	s += float64(m.TypedColumns) * 3
	if m.HasDate {
		s += 5
	}
	if m.HasBalance {
		s += 5
	}
	// Statement ledgers overwhelmingly carry 4-6 columns.
	if m.Columns >= 4 && m.Columns <= 6 {
		s += 3
	}
	s += m.BalanceDeltaFrac * 6
	s += m.CoveredFrac * 4
	s += m.MeanConfidence * 2
	return s
}
