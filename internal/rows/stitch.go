package rows

import (
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

// StitchResult carries the stitched transactions plus the balance rows
// encountered along the way, in document order.
type StitchResult struct {
	Transactions []models.StitchedTransaction
	// OpeningRows and ClosingRows keep their position via the index of
	// the transaction that follows (opening) or precedes (closing) them.
	OpeningRows []BalanceRow
	ClosingRows []BalanceRow
	Skipped     int
}

// BalanceRow is an opening or closing balance line with its printed
// amount cell and the transaction index it sits next to.
type BalanceRow struct {
	Raw       string
	AmountRaw string
	Index     int
	Page      int
}

// Stitch folds classified rows into transactions. A continuation row
// appends its description to the previous transaction and fills any
// field the parent is missing. The fold also spans page breaks: a
// transaction carrying a date but no balance at a page boundary stays
// open for the next page's first rows.
func Stitch(rowGroups [][]models.ExtractedRow) StitchResult {
	var res StitchResult
	var open *models.StitchedTransaction

	flush := func() {
		if open == nil {
			return
		}
		open.Description = normalize.ExpandAbbreviations(normalize.NormalizeWhitespace(open.Description))
		res.Transactions = append(res.Transactions, *open)
		open = nil
	}

	for _, group := range rowGroups {
		for _, row := range group {
			switch row.Kind {
			case models.RowTransaction:
				flush()
				open = newStitched(row)
			case models.RowContinuation:
				if open == nil {
					res.Skipped++
					continue
				}
				mergeContinuation(open, row)
			case models.RowOpeningBalance:
				flush()
				res.OpeningRows = append(res.OpeningRows, BalanceRow{
					Raw:       row.Raw,
					AmountRaw: row.Field(models.ColBalance),
					Index:     len(res.Transactions),
					Page:      row.Page,
				})
			case models.RowClosingBalance:
				flush()
				res.ClosingRows = append(res.ClosingRows, BalanceRow{
					Raw:       row.Raw,
					AmountRaw: row.Field(models.ColBalance),
					Index:     len(res.Transactions),
					Page:      row.Page,
				})
			default:
				res.Skipped++
			}
		}
		// A page or region boundary closes the open transaction unless
		// it still lacks a balance, the cross-page continuation case.
		if open != nil && open.BalanceRaw != "" {
			flush()
		}
	}
	flush()
	return res
}

func newStitched(row models.ExtractedRow) *models.StitchedTransaction {
	return &models.StitchedTransaction{
		RawDate:      row.Field(models.ColDate),
		ValueDateRaw: row.Field(models.ColValueDate),
		Description:  row.Field(models.ColDescription),
		DebitRaw:     row.Field(models.ColDebit),
		CreditRaw:    row.Field(models.ColCredit),
		AmountRaw:    row.Field(models.ColAmount),
		BalanceRaw:   row.Field(models.ColBalance),
		ReferenceRaw: row.Field(models.ColReference),
		Pages:        []int{row.Page},
		TokenCount:   row.TokenCount,
	}
}

// mergeContinuation appends description text and fills fields the
// parent has not set; a continuation never overwrites.
func mergeContinuation(t *models.StitchedTransaction, row models.ExtractedRow) {
	if d := row.Field(models.ColDescription); d != "" {
		if t.Description != "" {
			t.Description += " "
		}
		t.Description += d
	}
	fill := func(dst *string, ct models.ColumnType) {
		if *dst == "" {
			*dst = row.Field(ct)
		}
	}
	fill(&t.DebitRaw, models.ColDebit)
	fill(&t.CreditRaw, models.ColCredit)
	fill(&t.AmountRaw, models.ColAmount)
	fill(&t.BalanceRaw, models.ColBalance)
	fill(&t.ValueDateRaw, models.ColValueDate)
	fill(&t.ReferenceRaw, models.ColReference)

	if len(t.Pages) == 0 || t.Pages[len(t.Pages)-1] != row.Page {
		t.Pages = append(t.Pages, row.Page)
	}
	t.Continuations++
	t.TokenCount += row.TokenCount
}
