package normalize

import (
	"regexp"
	"strings"
)

// Reference is an identifier pulled out of a transaction description.
type Reference struct {
	Type  string
	Value string
}

// refPattern couples a reference type with the pattern that finds it.
// Order matters: the more specific transfer-scheme identifiers are
// tried before the generic ref-number fallback.
type refPattern struct {
	kind    string
	pattern *regexp.Regexp
}

var refPatterns = []refPattern{
	{"UTR", regexp.MustCompile(`(?i)\bUTR[:\s/-]*([A-Z0-9]{12,22})\b`)},
	{"NEFT", regexp.MustCompile(`(?i)\bNEFT[:\s/-]*([A-Z0-9]{8,22})\b`)},
	{"RTGS", regexp.MustCompile(`(?i)\bRTGS[:\s/-]*([A-Z0-9]{8,22})\b`)},
	{"IMPS", regexp.MustCompile(`(?i)\bIMPS[:\s/-]*(\d{9,14})\b`)},
	{"CHEQUE", regexp.MustCompile(`(?i)\b(?:CHQ|CHEQUE|CHECK)\s*(?:NO\.?|#)?[:\s/-]*(\d{4,10})\b`)},
	{"REF", regexp.MustCompile(`(?i)\bREF(?:ERENCE)?\s*(?:NO\.?|#)?[:\s/-]*([A-Z0-9]{4,22})\b`)},
}

// ExtractReference pulls the first embedded reference identifier out of
// a description, returning the cleaned display text and the reference.
// Descriptions without an identifier come back unchanged with a zero
// Reference.
func ExtractReference(desc string) (string, Reference) {
	for _, rp := range refPatterns {
		m := rp.pattern.FindStringSubmatchIndex(desc)
		if m == nil {
			continue
		}
		value := desc[m[2]:m[3]]
		cleaned := strings.TrimSpace(desc[:m[0]] + " " + desc[m[1]:])
		cleaned = NormalizeWhitespace(cleaned)
		cleaned = strings.Trim(cleaned, " -:/")
		return cleaned, Reference{Type: rp.kind, Value: value}
	}
	return desc, Reference{}
}
