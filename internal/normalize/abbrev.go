package normalize

import (
	"regexp"
	"strings"
)

// abbreviations maps the terse transfer codes banks print to readable
// words. Matched as whole uppercase tokens only, so ordinary words are
// never rewritten.
var abbreviations = map[string]string{
	"TRF":  "Transfer",
	"TFR":  "Transfer",
	"TXN":  "Transaction",
	"XFER": "Transfer",
	"WDL":  "Withdrawal",
	"DEP":  "Deposit",
	"PMT":  "Payment",
	"PYMT": "Payment",
	"CHQ":  "Cheque",
	"INT":  "Interest",
	"BAL":  "Balance",
	"S/O":  "Standing Order",
	"D/D":  "Direct Debit",
	"POS":  "Card Purchase",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ExpandAbbreviations rewrites well-known statement abbreviations in a
// stitched description. Only exact uppercase tokens are replaced.
func ExpandAbbreviations(desc string) string {
	fields := strings.Fields(desc)
	for i, f := range fields {
		if full, ok := abbreviations[f]; ok {
			fields[i] = full
		}
	}
	return strings.Join(fields, " ")
}
