package strategy

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Selector runs every strategy over a region and keeps the best result.
type Selector struct {
	strategies []Strategy
	cfg        config.StrategyConfig
}

// NewSelector wires the standard strategy set around one detector.
func NewSelector(det *columns.Detector, cfg config.StrategyConfig) *Selector {
	return &Selector{
		strategies: []Strategy{
			NewHeaderAnchored(det, cfg),
			NewFontWeight(det),
			NewGeometry(det),
			NewClusterCount(det),
		},
		cfg: cfg,
	}
}

// Selection is the winning result plus the full per-strategy scores.
type Selection struct {
	Winner Result
	Scores map[string]float64
	// LowConfidence flags a winner that missed the success thresholds.
	LowConfidence bool
}

// Select runs the strategies concurrently and picks the best result
// that meets the success thresholds; only when none does is the
// highest raw score taken, flagged low-confidence. Ties break toward
// the order the strategies are registered in, which puts the
// header-anchored result first.
func (s *Selector) Select(ctx context.Context, lines []models.Line) (Selection, error) {
	results := make([]Result, len(s.strategies))

	g, ctx := errgroup.WithContext(ctx)
	for i, st := range s.strategies {
		i, st := i, st
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bs := st.Detect(lines)
			m := Measure(lines, bs)
			results[i] = Result{
				Strategy:   st.Name(),
				Boundaries: bs,
				Metrics:    m,
				Score:      Score(m),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Selection{}, err
	}

	sel := Selection{Scores: make(map[string]float64, len(results))}
	for _, r := range results {
		sel.Scores[r.Strategy] = r.Score
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	sel.Winner, sel.LowConfidence = pickWinner(results, s.cfg)
	return sel, nil
}

// pickWinner takes the best result meeting the success thresholds. A
// threshold-failing result never displaces a successful one, whatever
// its raw score. Results must already be sorted by descending score.
func pickWinner(results []Result, cfg config.StrategyConfig) (Result, bool) {
	for _, r := range results {
		if r.Metrics.Columns >= cfg.MinColumns && r.Metrics.PlausibleRows >= cfg.MinRows {
			return r, false
		}
	}
	return results[0], true
}
