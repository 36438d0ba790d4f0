package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Grouping is a digit-grouping convention for monetary amounts.
type Grouping string

const (
	// GroupingWestern is 3-digit groups with "," and "." decimal: 100,000.00
	GroupingWestern Grouping = "western"
	// GroupingIndian is lakh/crore grouping: 1,00,000.00
	GroupingIndian Grouping = "indian"
	// GroupingEuropean is 3-digit groups with "." and "," decimal: 100.000,00
	GroupingEuropean Grouping = "european"
)

var (
	westernPattern  = regexp.MustCompile(`^\d{1,3}(,\d{3})*(\.\d+)?$`)
	indianPattern   = regexp.MustCompile(`^\d{1,2}(,\d{2})*,\d{3}(\.\d+)?$`)
	europeanPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$|^\d+,\d{1,2}$`)
	plainPattern    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// currencyStripper removes currency symbols and codes that statements
// prefix or suffix onto amounts.
var currencyStripper = strings.NewReplacer(
	"£", "", "$", "", "€", "", "₹", "", "¥", "",
	"Rs.", "", "Rs", "", "INR", "", "USD", "", "GBP", "", "EUR", "", "JPY", "",
	" ", " ", // non-breaking space
)

// DetectGrouping inspects representative amount samples and decides
// which grouping convention the document uses. Indian grouping is
// detected separately from Western because "1,00,000.00" parses as
// garbage under 3-digit rules. Western wins ties; it is by far the most
// common convention.
func DetectGrouping(samples []string) Grouping {
	var western, indian, european int
	for _, s := range samples {
		_, body := splitMarker(stripAmountDecorations(s))
		if body == "" {
			continue
		}
		switch {
		case indianPattern.MatchString(body):
			indian++
		case europeanPattern.MatchString(body):
			european++
		case westernPattern.MatchString(body):
			western++
		}
	}
	if indian > western && indian >= european {
		return GroupingIndian
	}
	if european > western && european > indian {
		return GroupingEuropean
	}
	return GroupingWestern
}

// ParseAmount converts a raw statement amount to a float under the
// given grouping convention. Negatives are recognized via parentheses,
// a leading or trailing minus, or a trailing Dr marker. The returned
// Side reports an explicit Dr/Cr suffix when present.
func ParseAmount(raw string, grouping Grouping) (float64, Side, error) {
	s := stripAmountDecorations(raw)
	if s == "" || s == "-" {
		return 0, SideNone, fmt.Errorf("empty amount %q", raw)
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	side, s := splitMarker(s)

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[:len(s)-1])
	}

	body := s
	switch grouping {
	case GroupingEuropean:
		body = strings.ReplaceAll(body, ".", "")
		body = strings.ReplaceAll(body, ",", ".")
	default:
		// Western and Indian both use "," for grouping and "." for the
		// decimal point; only the group sizes differ, which does not
		// matter once separators are removed.
		body = strings.ReplaceAll(body, ",", "")
	}
	body = strings.ReplaceAll(body, " ", "")

	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, side, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if negative {
		v = -v
	}
	return v, side, nil
}

// LooksLikeAmount reports whether the string is a monetary value under
// any supported convention, tolerating currency symbols and Dr/Cr
// suffixes.
func LooksLikeAmount(s string) bool {
	t := stripAmountDecorations(s)
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") && len(t) > 2 {
		t = strings.TrimSpace(t[1 : len(t)-1])
	}
	_, t = splitMarker(t)
	t = strings.TrimPrefix(t, "-")
	t = strings.TrimSuffix(t, "-")
	t = strings.TrimSpace(t)
	if t == "" {
		return false
	}
	return plainPattern.MatchString(t) || westernPattern.MatchString(t) ||
		indianPattern.MatchString(t) || europeanPattern.MatchString(t)
}

// stripAmountDecorations removes currency symbols, codes and outer
// whitespace, leaving sign, digits, separators and markers.
func stripAmountDecorations(s string) string {
	return strings.TrimSpace(currencyStripper.Replace(strings.TrimSpace(s)))
}
