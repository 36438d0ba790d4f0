package rows

import (
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

// Parse normalizes stitched transactions into parsed records. Dates go
// through OCR repair and locale-aware parsing; amounts parse under the
// detected grouping convention; a merged amount column is split across
// the whole slice so the side-inference heuristic sees every marker.
// Nothing is dropped: unparseable values keep their raw text and leave
// the normalized field unset.
func Parse(stitched []models.StitchedTransaction, grouping normalize.Grouping) []models.ParsedTransaction {
	out := make([]models.ParsedTransaction, len(stitched))

	merged := make([]string, len(stitched))
	anyMerged := false
	for i, s := range stitched {
		merged[i] = s.AmountRaw
		if s.AmountRaw != "" {
			anyMerged = true
		}
	}
	var splits []normalize.SplitResult
	if anyMerged {
		splits = normalize.SplitMergedAmounts(merged, grouping)
	}

	for i, s := range stitched {
		t := models.ParsedTransaction{
			RawDate: s.RawDate,
			Status:  models.StatusUnvalidated,
			Pages:   s.Pages,
		}

		if iso, err := normalize.ParseDate(s.RawDate); err == nil {
			t.Date = iso
		}

		desc, ref := normalize.ExtractReference(s.Description)
		t.Description = desc
		if ref.Value != "" {
			t.Reference = ref.Value
			t.ReferenceType = ref.Type
		}
		if t.Reference == "" && s.ReferenceRaw != "" {
			t.Reference = normalize.NormalizeWhitespace(s.ReferenceRaw)
		}

		if s.DebitRaw != "" {
			if v, _, err := normalize.ParseAmount(s.DebitRaw, grouping); err == nil {
				v = abs(v)
				t.Debit = &v
			}
		}
		if s.CreditRaw != "" {
			if v, _, err := normalize.ParseAmount(s.CreditRaw, grouping); err == nil {
				v = abs(v)
				t.Credit = &v
			}
		}
		if splits != nil && t.Debit == nil && t.Credit == nil {
			switch sp := splits[i]; sp.Side {
			case normalize.SideDebit:
				v := sp.Amount
				t.Debit = &v
			case normalize.SideCredit:
				v := sp.Amount
				t.Credit = &v
			}
		}

		if s.BalanceRaw != "" {
			t.RawBalance = s.BalanceRaw
			if v, side, err := normalize.ParseAmount(s.BalanceRaw, grouping); err == nil {
				if side == normalize.SideDebit {
					// An overdrawn balance printed as "123.45 Dr".
					v = -abs(v)
				}
				t.Balance = &v
			}
		}

		out[i] = t
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
