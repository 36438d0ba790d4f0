// Package layout turns the flat token list into lines and table regions.
package layout

import (
	"math"
	"sort"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// GroupLines buckets tokens by page and Y-band, then orders each band
// left to right. The band key is rounded, not truncated, so a token
// sitting exactly on the epsilon boundary always lands in the same
// bucket regardless of input order.
func GroupLines(tokens []models.Token, epsilon float64) []models.Line {
	if len(tokens) == 0 {
		return nil
	}
	if epsilon <= 0 {
		epsilon = 1
	}

	type bandKey struct {
		page int
		band int
	}
	bands := make(map[bandKey][]models.Token)
	for _, t := range tokens {
		k := bandKey{page: t.Page, band: int(math.Round(t.Top / epsilon))}
		bands[k] = append(bands[k], t)
	}

	keys := make([]bandKey, 0, len(bands))
	for k := range bands {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].page != keys[j].page {
			return keys[i].page < keys[j].page
		}
		return keys[i].band < keys[j].band
	})

	lines := make([]models.Line, 0, len(keys))
	for _, k := range keys {
		toks := bands[k]
		sort.SliceStable(toks, func(i, j int) bool {
			return toks[i].X0 < toks[j].X0
		})
		line := models.Line{
			Page:   k.page,
			Top:    toks[0].Top,
			Bottom: toks[0].Bottom,
			Tokens: toks,
		}
		for _, t := range toks[1:] {
			if t.Top < line.Top {
				line.Top = t.Top
			}
			if t.Bottom > line.Bottom {
				line.Bottom = t.Bottom
			}
		}
		lines = append(lines, line)
	}
	return lines
}
