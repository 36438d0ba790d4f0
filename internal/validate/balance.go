// Package validate checks transaction sequences against the balance
// law: each row's balance must equal the previous balance plus credits
// minus debits, within a currency-aware tolerance. Opening-balance rows
// split a document into independently validated segments.
package validate

import (
	"fmt"
	"math"

	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
	"github.com/insightdelivered/statement-tabulator/internal/rows"
)

// currencyTolerance maps ISO currency codes to the permitted rounding
// slack in the balance law. Zero-decimal currencies round to whole
// units; everything else gets just over a cent.
var currencyTolerance = map[string]float64{
	"JPY": 1.0,
	"KRW": 1.0,
	"VND": 1.0,
	"IDR": 1.0,
	"HUF": 0.5,
	"CLP": 1.0,
}

// Validator applies the balance law to parsed transactions.
type Validator struct {
	tolerance float64
}

// New builds a validator for the given currency. An empty or unknown
// currency code falls back to the configured default tolerance.
func New(cfg config.ValidateConfig, currency string) *Validator {
	tol := cfg.DefaultTolerance
	if t, ok := currencyTolerance[currency]; ok {
		tol = t
	}
	return &Validator{tolerance: tol}
}

// Segment splits parsed transactions at opening-balance rows and
// validates each segment independently. Each opening row starts a new
// segment seeded with its printed balance; the leading run before any
// opening row derives its opening balance from its first transaction.
func (v *Validator) Segment(txns []models.ParsedTransaction, openings []rows.BalanceRow, closings []rows.BalanceRow, grouping normalize.Grouping) []models.DocumentSegment {
	if len(txns) == 0 && len(openings) == 0 {
		return nil
	}

	type seed struct {
		start   int
		opening *float64
	}
	var seeds []seed
	if len(openings) == 0 || openings[0].Index > 0 {
		seeds = append(seeds, seed{start: 0})
	}
	for _, o := range openings {
		s := seed{start: o.Index}
		if val, _, err := normalize.ParseAmount(o.AmountRaw, grouping); err == nil {
			s.opening = &val
		}
		seeds = append(seeds, s)
	}

	segments := make([]models.DocumentSegment, 0, len(seeds))
	for i, s := range seeds {
		end := len(txns)
		if i+1 < len(seeds) {
			end = seeds[i+1].start
		}
		if s.start >= end && s.opening == nil {
			continue
		}
		seg := v.validateRun(txns[s.start:end], s.opening)

		// A closing-balance row inside the run pins the closing figure.
		for _, c := range closings {
			if c.Index > s.start && c.Index <= end {
				if val, _, err := normalize.ParseAmount(c.AmountRaw, grouping); err == nil {
					seg.ClosingBalance = val
					seg.DerivedClosing = false
				}
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// validateRun checks one segment's balance chain. Every transaction is
// validated against its own printed balance, so a single bad row does
// not cascade errors down the rest of the chain.
func (v *Validator) validateRun(txns []models.ParsedTransaction, opening *float64) models.DocumentSegment {
	seg := models.DocumentSegment{
		Transactions: append([]models.ParsedTransaction(nil), txns...),
	}

	var prev *float64
	if opening != nil {
		val := *opening
		seg.OpeningBalance = val
		prev = &val
	}

	// Net of the leading rows that printed no balance; folded into the
	// derived opening once the first balanced row arrives.
	leadNet := 0.0

	for i := range seg.Transactions {
		t := &seg.Transactions[i]

		if prev == nil {
			// No opening row: reconstruct it from the first transaction
			// that has a balance, backing out the amounts of any
			// balance-less rows before it.
			if t.Balance == nil {
				t.Status = models.StatusUnvalidated
				leadNet += net(t)
				continue
			}
			derived := *t.Balance - net(t) - leadNet
			seg.OpeningBalance = round2(derived)
			seg.DerivedOpening = true
			val := *t.Balance
			prev = &val
			t.Status = models.StatusValid
			seg.ValidCount++
			if *t.Balance < 0 {
				t.Overdraft = true
			}
			continue
		}

		if t.Balance == nil {
			// The row still moved the money; the next printed balance
			// has to account for its amount.
			t.Status = models.StatusUnvalidated
			*prev += net(t)
			continue
		}

		expected := *prev + net(t)
		diff := *t.Balance - expected
		switch {
		case math.Abs(diff) <= v.tolerance:
			t.Status = models.StatusValid
			seg.ValidCount++
		case v.swapExplains(*prev, t):
			// Swapping the debit and credit sides satisfies the law, so
			// the column meaning was likely misread, not the numbers.
			t.Status = models.StatusWarning
			t.Discrepancy = round2(diff)
			t.Note = "balance matches with debit and credit swapped"
			seg.WarningCount++
		default:
			t.Status = models.StatusError
			t.Discrepancy = round2(diff)
			t.Note = fmt.Sprintf("expected balance %.2f, statement shows %.2f", expected, *t.Balance)
			seg.ErrorCount++
		}

		if *t.Balance < 0 {
			t.Overdraft = true
		}
		// The printed balance is the anchor for the next row even when
		// this row failed; errors stay local to the row that broke.
		*prev = *t.Balance
	}

	if prev != nil {
		seg.ClosingBalance = round2(*prev)
		seg.DerivedClosing = true
	}
	return seg
}

// swapExplains tests the balance law with the row's sides exchanged.
func (v *Validator) swapExplains(prev float64, t *models.ParsedTransaction) bool {
	if t.Debit == nil && t.Credit == nil {
		return false
	}
	swapped := prev
	if t.Debit != nil {
		swapped += *t.Debit
	}
	if t.Credit != nil {
		swapped -= *t.Credit
	}
	return math.Abs(*t.Balance-swapped) <= v.tolerance
}

// net is the row's signed effect on the balance.
func net(t *models.ParsedTransaction) float64 {
	n := 0.0
	if t.Credit != nil {
		n += *t.Credit
	}
	if t.Debit != nil {
		n -= *t.Debit
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
