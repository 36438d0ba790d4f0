package rows

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

var (
	openingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bopening\s+balance\b`),
		regexp.MustCompile(`(?i)\bbalance\s+(?:brought|b/?)\s*f(?:orward|wd)?\b`),
		regexp.MustCompile(`(?i)\bb/f\b`),
		regexp.MustCompile(`(?i)\bbrought\s+forward\b`),
	}
	closingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bclosing\s+balance\b`),
		regexp.MustCompile(`(?i)\bbalance\s+(?:carried|c/?)\s*f(?:orward|wd)?\b`),
		regexp.MustCompile(`(?i)\bc/f\b`),
		regexp.MustCompile(`(?i)\bcarried\s+forward\b`),
	}
	skipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
		regexp.MustCompile(`(?i)\bcontinued\s+(?:on|from)\s+(?:next|previous)\s+page\b`),
		regexp.MustCompile(`(?i)^statement\s+(?:of|date|period)\b`),
		regexp.MustCompile(`(?i)^(?:total|subtotal|totals)\b`),
		regexp.MustCompile(`(?i)\bend\s+of\s+statement\b`),
		regexp.MustCompile(`(?i)^generated\s+on\b`),
	}
)

// Classifier assigns a row kind to each extracted row. Institution
// hints contribute extra skip and balance-row patterns.
type Classifier struct {
	skip    []*regexp.Regexp
	opening []*regexp.Regexp
	closing []*regexp.Regexp
}

// NewClassifier builds a classifier, folding in the hint's patterns
// when one is set.
func NewClassifier(hint *models.InstitutionHint) *Classifier {
	c := &Classifier{
		skip:    skipPatterns,
		opening: openingPatterns,
		closing: closingPatterns,
	}
	if hint == nil {
		return c
	}
	for _, p := range hint.SkipPatterns {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			c.skip = append(c.skip, re)
		}
	}
	for _, p := range hint.OpeningPatterns {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			c.opening = append(c.opening, re)
		}
	}
	for _, p := range hint.ClosingPatterns {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			c.closing = append(c.closing, re)
		}
	}
	return c
}

// Classify sets the Kind of every row in place. Classification is
// per-row except that a continuation needs a preceding transaction to
// attach to; orphaned continuations become noise.
func (c *Classifier) Classify(rows []models.ExtractedRow) {
	prevTransaction := false
	for i := range rows {
		rows[i].Kind = c.classifyOne(&rows[i], prevTransaction)
		switch rows[i].Kind {
		case models.RowTransaction, models.RowOpeningBalance:
			prevTransaction = true
		case models.RowContinuation:
			// keeps attaching to the same parent
		default:
			prevTransaction = false
		}
	}
}

func (c *Classifier) classifyOne(row *models.ExtractedRow, prevTransaction bool) models.RowKind {
	raw := normalize.NormalizeWhitespace(row.Raw)
	if raw == "" {
		return models.RowNoise
	}

	for _, re := range c.skip {
		if re.MatchString(raw) {
			return models.RowNoise
		}
	}

	hasBalanceCell := normalize.LooksLikeAmount(row.Field(models.ColBalance))
	for _, re := range c.opening {
		if re.MatchString(raw) {
			return models.RowOpeningBalance
		}
	}
	for _, re := range c.closing {
		if re.MatchString(raw) {
			return models.RowClosingBalance
		}
	}

	dateCell := row.Field(models.ColDate)
	hasDate := normalize.LooksLikeDate(normalize.CorrectDateOCR(dateCell))
	hasAmount := false
	for _, ct := range []models.ColumnType{models.ColDebit, models.ColCredit, models.ColAmount, models.ColBalance} {
		if normalize.LooksLikeAmount(row.Field(ct)) {
			hasAmount = true
			break
		}
	}

	switch {
	case hasDate && hasAmount:
		return models.RowTransaction
	case hasDate && row.HasField(models.ColDescription):
		// Date but no amount yet; the amounts may sit on the next line.
		return models.RowTransaction
	case !hasDate && prevTransaction && row.HasField(models.ColDescription) && !hasAmount:
		return models.RowContinuation
	case !hasDate && prevTransaction && hasBalanceCell:
		// A wrapped row can carry the balance alone on the overflow line.
		return models.RowContinuation
	default:
		return models.RowNoise
	}
}

// IsLikelyHeader reports whether a row reads as a column header rather
// than data, used to drop a repeated header at each page top.
func IsLikelyHeader(row models.ExtractedRow) bool {
	raw := strings.ToLower(normalize.NormalizeWhitespace(row.Raw))
	hits := 0
	for _, word := range []string{"date", "description", "particulars", "debit", "credit", "balance", "withdrawal", "deposit"} {
		if strings.Contains(raw, word) {
			hits++
		}
	}
	return hits >= 3 && !normalize.LooksLikeAmount(row.Field(models.ColBalance))
}
