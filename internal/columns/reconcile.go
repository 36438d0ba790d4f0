package columns

import (
	"sort"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Reconcile merges per-region column boundaries into one document-wide
// column map. Boundaries whose x-positions fall within the reconcile
// tolerance are pooled; each pool resolves its type by weighted vote,
// its extent by the widest member. The date, description and balance
// types are unique document-wide, and flipping a numeric column away
// from its strongest assignment needs a supermajority of regions.
func (d *Detector) Reconcile(regions []models.TableRegion) []models.ColumnBoundary {
	var all []models.ColumnBoundary
	for _, r := range regions {
		all = append(all, r.Boundaries...)
	}
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].X0 < all[j].X0 })

	type pool struct {
		members []models.ColumnBoundary
		x0, x1  float64
	}
	var pools []*pool
	for _, b := range all {
		var home *pool
		for _, p := range pools {
			if center(b) >= p.x0-d.cfg.ReconcileTolerance && center(b) <= p.x1+d.cfg.ReconcileTolerance {
				home = p
				break
			}
		}
		if home == nil {
			pools = append(pools, &pool{members: []models.ColumnBoundary{b}, x0: b.X0, x1: b.X1})
			continue
		}
		home.members = append(home.members, b)
		if b.X0 < home.x0 {
			home.x0 = b.X0
		}
		if b.X1 > home.x1 {
			home.x1 = b.X1
		}
	}

	out := make([]models.ColumnBoundary, 0, len(pools))
	for _, p := range pools {
		out = append(out, d.resolvePool(p.members, p.x0, p.x1))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X0 < out[j].X0 })

	dedupeUnique(out)
	return out
}

// resolvePool votes a pool of same-position boundaries down to one.
// Votes are weighted by count first and total confidence second, but a
// numeric type cannot be overturned by a slim majority: the challenger
// needs more than the overturn fraction of the pool.
func (d *Detector) resolvePool(members []models.ColumnBoundary, x0, x1 float64) models.ColumnBoundary {
	counts := map[models.ColumnType]int{}
	conf := map[models.ColumnType]float64{}
	for _, m := range members {
		counts[m.Type]++
		conf[m.Type] += m.Confidence
	}

	var best models.ColumnType
	for t := range counts {
		if best == "" ||
			counts[t] > counts[best] ||
			(counts[t] == counts[best] && conf[t] > conf[best]) {
			best = t
		}
	}

	// Strongest single assignment across the pool.
	var anchor models.ColumnBoundary
	for _, m := range members {
		if m.Confidence > anchor.Confidence {
			anchor = m
		}
	}
	if anchor.Type.IsNumeric() && best != anchor.Type {
		if float64(counts[best]) <= d.cfg.OverturnMajority*float64(len(members)) {
			best = anchor.Type
		}
	}

	return models.ColumnBoundary{
		X0:         x0,
		X1:         x1,
		Type:       best,
		Confidence: conf[best] / float64(counts[best]),
	}
}

// dedupeUnique keeps the single strongest column for each type that
// must be unique document-wide, demoting the losers to unknown (date
// losers become value dates when none exists yet).
func dedupeUnique(bs []models.ColumnBoundary) {
	unique := []models.ColumnType{models.ColDate, models.ColDescription, models.ColBalance}
	for _, t := range unique {
		best, bestConf := -1, -1.0
		for i, b := range bs {
			if b.Type == t && b.Confidence > bestConf {
				best, bestConf = i, b.Confidence
			}
		}
		if best < 0 {
			continue
		}
		for i := range bs {
			if i == best || bs[i].Type != t {
				continue
			}
			if t == models.ColDate && !hasType(bs, models.ColValueDate) {
				bs[i].Type = models.ColValueDate
			} else {
				bs[i].Type = models.ColUnknown
			}
		}
	}
}

func hasType(bs []models.ColumnBoundary, t models.ColumnType) bool {
	for _, b := range bs {
		if b.Type == t {
			return true
		}
	}
	return false
}

func center(b models.ColumnBoundary) float64 { return (b.X0 + b.X1) / 2 }
