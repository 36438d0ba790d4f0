package normalize

import (
	"regexp"
	"strings"
)

// Side is which ledger side an amount cell belongs to.
type Side int

const (
	SideNone Side = iota
	SideDebit
	SideCredit
)

func (s Side) String() string {
	switch s {
	case SideDebit:
		return "debit"
	case SideCredit:
		return "credit"
	default:
		return "none"
	}
}

var (
	trailingMarker = regexp.MustCompile(`(?i)[\s]*\(?\b(dr|cr|db)\.?\)?\s*$`)
	leadingMarker  = regexp.MustCompile(`(?i)^\(?\b(dr|cr|db)\.?\)?[\s]+`)
)

// splitMarker strips a Dr/Cr marker from an amount cell and reports
// which side it named. Trailing markers are the common form
// ("200.00 Dr"); a few layouts put them in front.
func splitMarker(s string) (Side, string) {
	if m := trailingMarker.FindStringSubmatch(s); m != nil {
		return markerSide(m[1]), strings.TrimSpace(trailingMarker.ReplaceAllString(s, ""))
	}
	if m := leadingMarker.FindStringSubmatch(s); m != nil {
		return markerSide(m[1]), strings.TrimSpace(leadingMarker.ReplaceAllString(s, ""))
	}
	return SideNone, strings.TrimSpace(s)
}

func markerSide(marker string) Side {
	switch strings.ToLower(strings.TrimSuffix(marker, ".")) {
	case "cr":
		return SideCredit
	default: // dr, db
		return SideDebit
	}
}

// MarkerSide reports the explicit Dr/Cr suffix of an amount cell
// without parsing the number.
func MarkerSide(s string) Side {
	side, _ := splitMarker(stripAmountDecorations(s))
	return side
}

// SplitResult is one merged-amount cell resolved into a ledger side.
type SplitResult struct {
	Amount float64
	Side   Side
}

// SplitMergedAmounts resolves a merged debit/credit column. Each cell's
// own marker or sign wins; unsuffixed cells default to whichever single
// marker type is absent from the rest of the column, so a column whose
// explicit markers are all "Cr" treats bare cells as debits. When the
// column carries no markers at all, sign decides: negative cells are
// debits. The index-aligned result has Side == SideNone for cells that
// failed to parse.
//
// The absent-marker default can misread a column that genuinely holds a
// single transaction type; it is a heuristic, kept because suffixed
// statements overwhelmingly mark only one side.
func SplitMergedAmounts(cells []string, grouping Grouping) []SplitResult {
	out := make([]SplitResult, len(cells))

	var sawDebit, sawCredit bool
	for _, c := range cells {
		switch MarkerSide(c) {
		case SideDebit:
			sawDebit = true
		case SideCredit:
			sawCredit = true
		}
	}

	defaultSide := SideDebit
	if sawDebit && !sawCredit {
		defaultSide = SideCredit
	}

	for i, c := range cells {
		v, side, err := ParseAmount(c, grouping)
		if err != nil {
			continue
		}
		if side == SideNone {
			if v < 0 {
				side = SideDebit
				v = -v
			} else {
				side = defaultSide
			}
		}
		out[i] = SplitResult{Amount: v, Side: side}
	}
	return out
}
