// Package normalize converts raw statement text into canonical values:
// ISO dates, plain float amounts, debit/credit sides, and extracted
// reference identifiers. Everything here is locale-aware and pure.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// monthNames maps lowercase month names and abbreviations to month
// numbers. Covers English plus the European languages that show up in
// multi-language statements.
var monthNames = map[string]int{
	// English
	"jan": 1, "january": 1, "feb": 2, "february": 2, "mar": 3, "march": 3,
	"apr": 4, "april": 4, "may": 5, "jun": 6, "june": 6, "jul": 7, "july": 7,
	"aug": 8, "august": 8, "sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10, "nov": 11, "november": 11, "dec": 12, "december": 12,
	// French
	"janv": 1, "janvier": 1, "fevr": 2, "fevrier": 2, "mars": 3, "avr": 4, "avril": 4,
	"mai": 5, "juin": 6, "juil": 7, "juillet": 7, "aout": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "decembre": 12,
	// Spanish
	"ene": 1, "enero": 1, "febrero": 2, "marzo": 3, "abr": 4, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "ago": 8, "agosto": 8,
	"septiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
	// German
	"januar": 1, "februar": 2, "marz": 3, "juni": 6, "juli": 7,
	"okt": 10, "oktober": 10, "dez": 12, "dezember": 12,
	// Italian
	"gen": 1, "gennaio": 1, "febbraio": 2, "maggio": 5, "giu": 6, "giugno": 6,
	"lug": 7, "luglio": 7, "settembre": 9, "ottobre": 10, "dicembre": 12,
}

var (
	cjkDatePattern = regexp.MustCompile(`^(\d{2,4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日?$`)
	// ordinalSuffix strips "1st", "2nd", "3rd", "15th".
	ordinalSuffix = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)\b`)
	dateSeparator = regexp.MustCompile(`[\s/.\-,]+`)
	// dateShape matches strings that are plausibly dates once OCR
	// confusions are repaired: digit-ish groups joined by separators,
	// optionally with an alphabetic month in the middle.
	dateShape = regexp.MustCompile(`^[0-9OolIZSBgq]{1,4}([\s/.\-,]+[0-9OolIZSBgq\p{L}]{1,12}){1,2}([\s/.\-,]+[0-9OolIZSBgq]{1,4})?$`)
)

// ocrDigitFixes are the character confusions OCR engines make inside
// numbers. Applied only to digit groups of date-shaped strings so month
// names are never mangled.
var ocrDigitFixes = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
	"Z", "2",
	"S", "5",
	"B", "8",
	"g", "9", "q", "9",
)

// CorrectDateOCR repairs digit confusions in a date-shaped string.
// Non-date-shaped input is returned untouched; alphabetic month parts
// are preserved.
func CorrectDateOCR(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !dateShape.MatchString(trimmed) {
		return s
	}
	parts := dateSeparator.Split(trimmed, -1)
	seps := dateSeparator.FindAllString(trimmed, -1)
	var b strings.Builder
	for i, part := range parts {
		if isDigitGroup(part) {
			b.WriteString(ocrDigitFixes.Replace(part))
		} else {
			b.WriteString(part)
		}
		if i < len(seps) {
			b.WriteString(seps[i])
		}
	}
	return b.String()
}

// isDigitGroup reports whether the part is digits plus OCR confusables
// with at least one true digit.
func isDigitGroup(part string) bool {
	hasDigit := false
	for _, r := range part {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("OolIZSBgq|", r):
		default:
			return false
		}
	}
	return hasDigit
}

// ParseDate normalizes a raw statement date to ISO-8601 (YYYY-MM-DD).
// It repairs OCR confusions first, then tries the regional formats in
// order: ISO, CJK year-month-day, numeric day-first, written month
// names (with ordinal days), short years.
func ParseDate(raw string) (string, error) {
	s := strings.TrimSpace(CorrectDateOCR(raw))
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	if m := cjkDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return assemble(year, month, day)
	}

	s = ordinalSuffix.ReplaceAllString(s, "$1")
	parts := dateSeparator.Split(s, -1)
	clean := parts[:0]
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 2 {
		// Day and month without a year ("4 Dec"); not resolvable to a
		// full date on its own.
		return "", fmt.Errorf("date %q has no year", raw)
	}
	if len(clean) != 3 {
		return "", fmt.Errorf("unrecognized date %q", raw)
	}

	a, b, c := clean[0], clean[1], clean[2]

	// ISO or YYYY/MM/DD: a four-digit leading year.
	if len(a) == 4 && allDigits(a) && allDigits(b) && allDigits(c) {
		year, _ := strconv.Atoi(a)
		month, _ := strconv.Atoi(b)
		day, _ := strconv.Atoi(c)
		return assemble(year, month, day)
	}

	// Written month in the middle: "15 Jan 2024", "1 février 2024".
	if month, ok := lookupMonth(b); ok {
		day, err := strconv.Atoi(a)
		if err != nil {
			return "", fmt.Errorf("unrecognized date %q", raw)
		}
		year, err := parseYear(c)
		if err != nil {
			return "", err
		}
		return assemble(year, month, day)
	}

	// Written month first: "Jan 15, 2024".
	if month, ok := lookupMonth(a); ok {
		day, err := strconv.Atoi(b)
		if err != nil {
			return "", fmt.Errorf("unrecognized date %q", raw)
		}
		year, err := parseYear(c)
		if err != nil {
			return "", err
		}
		return assemble(year, month, day)
	}

	// Numeric day-first (statement convention outside the US). When the
	// first component cannot be a day, fall back to month-first.
	if allDigits(a) && allDigits(b) && allDigits(c) {
		day, _ := strconv.Atoi(a)
		month, _ := strconv.Atoi(b)
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		year, err := parseYear(c)
		if err != nil {
			return "", err
		}
		return assemble(year, month, day)
	}

	return "", fmt.Errorf("unrecognized date %q", raw)
}

// LooksLikeDate reports whether the string parses as a full date, or is
// a day+month fragment ("04 Dec", "15/01") that statements use when the
// year is printed once per page.
func LooksLikeDate(s string) bool {
	if _, err := ParseDate(s); err == nil {
		return true
	}
	s = strings.TrimSpace(CorrectDateOCR(s))
	parts := dateSeparator.Split(s, -1)
	clean := parts[:0]
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) != 2 {
		return false
	}
	day, err := strconv.Atoi(clean[0])
	if err != nil || day < 1 || day > 31 {
		return false
	}
	if _, ok := lookupMonth(clean[1]); ok {
		return true
	}
	month, err := strconv.Atoi(clean[1])
	return err == nil && month >= 1 && month <= 12
}

func lookupMonth(s string) (int, bool) {
	key := strings.ToLower(stripDiacritics(s))
	key = strings.TrimSuffix(key, ".")
	m, ok := monthNames[key]
	return m, ok
}

// stripDiacritics folds the accented characters that appear in
// non-English month names.
func stripDiacritics(s string) string {
	replacer := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "û", "u", "ü", "u", "ä", "a", "à", "a", "â", "a",
		"ç", "c", "í", "i", "ñ", "n", "ó", "o", "ö", "o",
	)
	return replacer.Replace(s)
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad year %q", s)
	}
	switch {
	case y >= 1000:
		return y, nil
	case y < 70:
		return 2000 + y, nil
	case y < 100:
		return 1900 + y, nil
	default:
		return 0, fmt.Errorf("bad year %q", s)
	}
}

func assemble(year, month, day int) (string, error) {
	if year < 1900 || year > 2200 {
		if year >= 0 && year < 100 {
			y, _ := parseYear(strconv.Itoa(year))
			year = y
		} else {
			return "", fmt.Errorf("year %d out of range", year)
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
