package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

func leftTok(text string, x0, top float64) models.Token {
	return models.Token{Text: text, Page: 1, X0: x0, X1: x0 + float64(len(text))*6, Top: top, Bottom: top + 10}
}

func rightTok(text string, x1, top float64) models.Token {
	return models.Token{Text: text, Page: 1, X0: x1 - float64(len(text))*6, X1: x1, Top: top, Bottom: top + 10}
}

// statementTokens builds a one-page statement: a bank name line, a
// column header, an opening-balance row and three transactions whose
// balances chain from 1,500.00.
func statementTokens() []models.Token {
	var toks []models.Token
	add := func(ts ...models.Token) { toks = append(toks, ts...) }

	add(leftTok("HSBC", 40, 40), leftTok("Bank", 80, 40), leftTok("plc", 120, 40))

	add(
		leftTok("Date", 40, 120),
		leftTok("Description", 130, 120),
		leftTok("Debit", 370, 120),
		leftTok("Credit", 450, 120),
		leftTok("Balance", 530, 120),
	)

	add(
		leftTok("Opening", 130, 134),
		leftTok("Balance", 180, 134),
		rightTok("1,500.00", 570, 134),
	)

	body := []struct {
		date, desc, debit, credit, balance string
	}{
		{"15/01/2024", "CARD PAYMENT GROCER", "32.50", "", "1,467.50"},
		{"16/01/2024", "SALARY ACME LTD", "", "2,500.00", "3,967.50"},
		{"17/01/2024", "DIRECT DEBIT ENERGY", "89.99", "", "3,877.51"},
	}
	for i, r := range body {
		top := 148 + float64(i)*14
		add(leftTok(r.date, 40, top))
		for j, word := range splitWords(r.desc) {
			add(leftTok(word, 130+float64(j)*60, top))
		}
		if r.debit != "" {
			add(rightTok(r.debit, 400, top))
		}
		if r.credit != "" {
			add(rightTok(r.credit, 480, top))
		}
		add(rightTok(r.balance, 570, top))
	}
	return toks
}

func splitWords(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func TestProcessEndToEnd(t *testing.T) {
	p := New(config.Default(), nil)

	res, err := p.Process(context.Background(), statementTokens(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)

	seg := res.Segments[0]
	assert.Equal(t, 1500.00, seg.OpeningBalance)
	require.Len(t, seg.Transactions, 3)
	assert.Equal(t, 3, seg.ValidCount)
	assert.Equal(t, 0, seg.ErrorCount)

	first := seg.Transactions[0]
	assert.Equal(t, "2024-01-15", first.Date)
	require.NotNil(t, first.Debit)
	assert.Equal(t, 32.50, *first.Debit)
	require.NotNil(t, first.Balance)
	assert.Equal(t, 1467.50, *first.Balance)
	assert.Equal(t, models.StatusValid, first.Status)

	assert.InDelta(t, 3877.51, seg.ClosingBalance, 0.001)
	assert.True(t, seg.DerivedClosing)

	assert.Len(t, res.Transactions(), 3)
}

func TestProcessDiagnostics(t *testing.T) {
	p := New(config.Default(), nil)

	res, err := p.Process(context.Background(), statementTokens(), Options{Trace: true})
	require.NoError(t, err)

	diag := res.Diagnostics
	assert.Equal(t, 1, diag.Pages)
	assert.Greater(t, diag.LinesTotal, 0)
	assert.Greater(t, diag.RegionCount, 0)
	assert.NotEmpty(t, diag.Strategy)
	assert.NotEmpty(t, diag.StrategyScores)
	assert.NotEmpty(t, diag.ColumnMap)
	assert.Equal(t, "western", diag.NumberGrouping)
	assert.Equal(t, "hsbc", diag.Institution)
	assert.Equal(t, "GBP", diag.Currency)
	assert.Equal(t, 1, diag.SegmentCount)
	assert.NotEmpty(t, diag.RowTrace)
	assert.False(t, diag.LowConfidence)
}

func TestProcessIdempotent(t *testing.T) {
	p := New(config.Default(), nil)
	tokens := statementTokens()

	// Same tokens in, same result out, run after run.
	first, err := p.Process(context.Background(), tokens, Options{Trace: true})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := p.Process(context.Background(), tokens, Options{Trace: true})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestProcessExplicitInstitution(t *testing.T) {
	p := New(config.Default(), nil)

	res, err := p.Process(context.Background(), statementTokens(), Options{Institution: "Barclays"})
	require.NoError(t, err)
	assert.Equal(t, "barclays", res.Diagnostics.Institution)
}

func TestProcessNoTable(t *testing.T) {
	p := New(config.Default(), nil)

	_, err := p.Process(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoTable)

	// A lone line never reaches the minimum region size.
	single := []models.Token{leftTok("hello", 40, 100)}
	_, err = p.Process(context.Background(), single, Options{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestScrapeAccountInfo(t *testing.T) {
	lineOf := func(top float64, words ...string) models.Line {
		var toks []models.Token
		for i, w := range words {
			toks = append(toks, leftTok(w, 40+float64(i)*80, top))
		}
		return models.Line{Page: 1, Top: top, Bottom: top + 10, Tokens: toks}
	}

	lines := []models.Line{
		lineOf(40, "Account", "Holder:", "J", "DOE"),
		lineOf(54, "Account", "Number:", "12345678"),
		lineOf(68, "Sort", "Code:", "40-12-34"),
		lineOf(82, "Statement", "Period:", "1", "Jan", "2024", "to", "31", "Jan", "2024"),
	}

	info := scrapeAccountInfo(lines)
	assert.Equal(t, "J DOE", info.Holder)
	assert.Equal(t, "12345678", info.Number)
	assert.Equal(t, "40-12-34", info.SortCode)
	assert.Contains(t, info.Period, "2024")
}

func TestDetectCurrency(t *testing.T) {
	lineOf := func(words ...string) models.Line {
		var toks []models.Token
		for i, w := range words {
			toks = append(toks, leftTok(w, 40+float64(i)*80, 40))
		}
		return models.Line{Page: 1, Top: 40, Bottom: 50, Tokens: toks}
	}

	assert.Equal(t, "EUR", detectCurrency([]models.Line{lineOf("Kontoauszug", "EUR", "Konto")}))
	assert.Equal(t, "GBP", detectCurrency([]models.Line{lineOf("Balance", "£1,500.00")}))
	// An explicit code outranks an ambiguous symbol.
	assert.Equal(t, "USD", detectCurrency([]models.Line{lineOf("$", "amounts", "in", "USD")}))
	assert.Equal(t, "", detectCurrency([]models.Line{lineOf("no", "currency", "here")}))
}
