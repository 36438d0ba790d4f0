package pipeline

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

var (
	accountNumberPattern = regexp.MustCompile(`(?i)\baccount\s*(?:no\.?|number|#)?\s*[:\-]?\s*([\dXx*]{6,18})\b`)
	sortCodePattern      = regexp.MustCompile(`(?i)\bsort\s*code\s*[:\-]?\s*(\d{2}[-\s]\d{2}[-\s]\d{2})\b`)
	ibanPattern          = regexp.MustCompile(`\b([A-Z]{2}\d{2}[A-Z0-9]{10,30})\b`)
	periodPattern        = regexp.MustCompile(`(?i)(?:statement\s+period|period)\s*[:\-]?\s*(.+?\d{4}.*?\d{4}|.+?\d{4})\s*$`)
	holderPattern        = regexp.MustCompile(`(?i)^(?:account\s+holder|name)\s*[:\-]\s*(.+)$`)
)

// scrapeAccountInfo pulls holder, account number, sort code and
// statement period out of the document's leading lines. Statements put
// this block above the first table, so only the first pages are worth
// scanning.
func scrapeAccountInfo(lines []models.Line) models.AccountInfo {
	var info models.AccountInfo
	for i, l := range lines {
		if i > 80 {
			break
		}
		text := normalize.NormalizeWhitespace(l.Text())

		if info.Number == "" {
			if m := accountNumberPattern.FindStringSubmatch(text); m != nil {
				info.Number = m[1]
			} else if m := ibanPattern.FindStringSubmatch(text); m != nil {
				info.Number = m[1]
			}
		}
		if info.SortCode == "" {
			if m := sortCodePattern.FindStringSubmatch(text); m != nil {
				info.SortCode = strings.ReplaceAll(m[1], " ", "-")
			}
		}
		if info.Period == "" {
			if m := periodPattern.FindStringSubmatch(text); m != nil {
				info.Period = strings.TrimSpace(m[1])
			}
		}
		if info.Holder == "" {
			if m := holderPattern.FindStringSubmatch(text); m != nil {
				info.Holder = strings.TrimSpace(m[1])
			}
		}
	}
	return info
}

// currencyMarkers maps symbols and codes found in statement text to the
// ISO code used for tolerance selection. Codes are matched as words,
// symbols as substrings.
var currencySymbols = []struct {
	marker string
	code   string
}{
	{"₹", "INR"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"$", "USD"},
}

var currencyCodePattern = regexp.MustCompile(`\b(INR|GBP|EUR|USD|JPY|KRW|VND|IDR|AUD|CAD|CHF)\b`)

// detectCurrency scans document text for a currency code or symbol.
// An explicit ISO code outranks a symbol since "$" is ambiguous.
func detectCurrency(lines []models.Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 120 {
			break
		}
		sb.WriteString(l.Text())
		sb.WriteByte('\n')
	}
	text := sb.String()

	if m := currencyCodePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, cs := range currencySymbols {
		if strings.Contains(text, cs.marker) {
			return cs.code
		}
	}
	return ""
}
