// Package rows turns classified table regions into stitched
// transactions: each line projects into the column map, rows are
// classified as transactions, continuations or noise, and
// continuations fold into their parent rows, including across pages.
package rows

import (
	"sort"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Extract projects a region's lines through the column boundaries.
// A token lands in the column containing its center; tokens whose
// center falls in a gutter are counted but not assigned, which keeps a
// misdetected column map visible downstream instead of silently
// swallowing text.
func Extract(region models.TableRegion, boundaries []models.ColumnBoundary) []models.ExtractedRow {
	rows := make([]models.ExtractedRow, 0, len(region.Lines))
	for _, line := range region.Lines {
		rows = append(rows, projectLine(line, boundaries))
	}
	return rows
}

func projectLine(line models.Line, boundaries []models.ColumnBoundary) models.ExtractedRow {
	row := models.ExtractedRow{
		Page:       line.Page,
		Raw:        line.Text(),
		Fields:     make(map[models.ColumnType]string),
		TokenCount: len(line.Tokens),
	}

	toks := append([]models.Token(nil), line.Tokens...)
	sort.Slice(toks, func(i, j int) bool { return toks[i].X0 < toks[j].X0 })

	for _, t := range toks {
		assigned := false
		for _, b := range boundaries {
			if b.Contains(t.CenterX()) {
				if cur := row.Fields[b.Type]; cur != "" {
					row.Fields[b.Type] = cur + " " + t.Text
				} else {
					row.Fields[b.Type] = t.Text
				}
				assigned = true
				break
			}
		}
		if !assigned {
			row.Unassigned++
		}
	}
	return row
}
