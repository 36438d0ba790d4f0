// Package extractor turns PDF statements into positioned tokens. The
// primary path reads glyph coordinates from the PDF text objects; for
// files that defeat it there is a chain of fallbacks, down through raw
// content-stream parsing, the external pdftotext tool, and OCR for
// scanned documents. Fallbacks lose true glyph positions and get
// synthetic ones reconstructed from the text layout instead.
package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// ExtractTokens reads a PDF and returns its positioned tokens. The
// extraction methods are tried in order of fidelity; the first one
// producing readable text wins.
func ExtractTokens(filePath string) ([]models.Token, error) {
	tokens, libErr := extractPositioned(filePath)
	if libErr == nil && tokensReadable(tokens) {
		return tokens, nil
	}

	if pages, err := extractWithPdftotext(filePath); err == nil && pagesReadable(pages) {
		return TokensFromPages(pages), nil
	}

	if pages, err := extractRawStreams(filePath); err == nil && pagesReadable(pages) {
		return TokensFromPages(pages), nil
	}

	if pages, err := ExtractTextOCR(filePath); err == nil && pagesReadable(pages) {
		return TokensFromPages(pages), nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("pdf extraction failed: %w; the file may be image-based or use undecodable font encodings", libErr)
	}
	return nil, fmt.Errorf("no readable text could be extracted; the file may be image-based or use undecodable font encodings")
}

// extractPositioned reads glyph runs with their coordinates via the PDF
// library. The library panics on some malformed files, hence the recover.
func extractPositioned(filePath string) (tokens []models.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageHeight := mediaBoxHeight(page)
		tokens = append(tokens, pageTokens(page.Content(), pageNum, pageHeight)...)
	}
	return tokens, nil
}

// pageTokens merges adjacent glyph runs into word tokens. Runs on the
// same baseline whose gap is under half the glyph width belong to one
// word; wider gaps start a new token. PDF y grows upward, so Top is
// measured from the page height.
func pageTokens(content pdf.Content, pageNum int, pageHeight float64) []models.Token {
	texts := make([]pdf.Text, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) != "" {
			texts = append(texts, t)
		}
	}
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var tokens []models.Token
	var cur *models.Token
	var curEndX float64

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			tokens = append(tokens, *cur)
		}
		cur = nil
	}

	for _, t := range texts {
		top := pageHeight - t.Y
		height := t.FontSize
		if height <= 0 {
			height = 10
		}

		sameWord := cur != nil &&
			math.Abs((pageHeight-t.Y)-cur.Top) < height/2 &&
			t.X-curEndX < maxIntraWordGap(t)

		if sameWord {
			cur.Text += t.S
			cur.X1 = t.X + t.W
			curEndX = t.X + t.W
			if cur.Bottom < top+height {
				cur.Bottom = top + height
			}
			continue
		}

		flush()
		cur = &models.Token{
			Text:   t.S,
			Page:   pageNum,
			X0:     t.X,
			X1:     t.X + t.W,
			Top:    top,
			Bottom: top + height,
			Bold:   isBoldFont(t.Font),
		}
		curEndX = t.X + t.W
	}
	flush()
	return tokens
}

// maxIntraWordGap is the widest x gap still considered part of a word.
func maxIntraWordGap(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 0.3
	}
	return 3
}

func isBoldFont(font string) bool {
	lower := strings.ToLower(font)
	return strings.Contains(lower, "bold") || strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy")
}

func mediaBoxHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return 842 // A4 default
	}
	return box.Index(3).Float64() - box.Index(1).Float64()
}

// tokensReadable applies the text-quality gate to positioned tokens.
func tokensReadable(tokens []models.Token) bool {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
		sb.WriteByte(' ')
	}
	return pagesReadable([]string{sb.String()})
}

// pagesReadable checks that pages hold enough text, that the text is
// mostly plain readable characters rather than binary garbage, and
// that at least one word a statement would contain appears. Strict
// ASCII on purpose: identity-encoded fonts produce accented garbage
// that unicode.IsLetter would wave through.
func pagesReadable(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"%&@#!?+=*`, r) ||
				r == '£' || r == '$' || r == '€' || r == '₹' || r == '¥' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
