package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

func leftTok(text string, x0, top float64) models.Token {
	return models.Token{Text: text, Page: 1, X0: x0, X1: x0 + float64(len(text))*6, Top: top, Bottom: top + 10}
}

func rightTok(text string, x1, top float64) models.Token {
	return models.Token{Text: text, Page: 1, X0: x1 - float64(len(text))*6, X1: x1, Top: top, Bottom: top + 10}
}

func boldTok(text string, x0, top float64) models.Token {
	t := leftTok(text, x0, top)
	t.Bold = true
	return t
}

// tableWithHeader builds a statement table whose first line is a
// header row naming the columns.
func tableWithHeader(bold bool) []models.Line {
	mk := leftTok
	if bold {
		mk = boldTok
	}
	header := models.Line{Page: 1, Top: 90, Bottom: 100, Tokens: []models.Token{
		mk("Date", 40, 90),
		mk("Description", 130, 90),
		mk("Debit", 370, 90),
		mk("Credit", 450, 90),
		mk("Balance", 530, 90),
	}}

	rows := []struct {
		date, desc, debit, credit, balance string
	}{
		{"15/01/2024", "CARD PAYMENT GROCER", "32.50", "", "1,467.50"},
		{"16/01/2024", "SALARY ACME LTD", "", "2,500.00", "3,967.50"},
		{"17/01/2024", "DIRECT DEBIT ENERGY", "89.99", "", "3,877.51"},
		{"18/01/2024", "ATM WITHDRAWAL", "100.00", "", "3,777.51"},
		{"19/01/2024", "REFUND STORE", "", "15.49", "3,793.00"},
	}

	lines := []models.Line{header}
	for i, r := range rows {
		top := 110 + float64(i)*14
		toks := []models.Token{
			leftTok(r.date, 40, top),
			leftTok(r.desc, 130, top),
		}
		if r.debit != "" {
			toks = append(toks, rightTok(r.debit, 400, top))
		}
		if r.credit != "" {
			toks = append(toks, rightTok(r.credit, 480, top))
		}
		toks = append(toks, rightTok(r.balance, 570, top))
		lines = append(lines, models.Line{Page: 1, Top: top, Bottom: top + 10, Tokens: toks})
	}
	return lines
}

func typeAt(bs []models.ColumnBoundary, x float64) models.ColumnType {
	for _, b := range bs {
		if b.Contains(x) {
			return b.Type
		}
	}
	return models.ColUnknown
}

func TestHeaderAnchored(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	h := NewHeaderAnchored(det, cfg.Strategy)

	bs := h.Detect(tableWithHeader(false))
	require.NotEmpty(t, bs)

	assert.Equal(t, models.ColDate, typeAt(bs, 50))
	assert.Equal(t, models.ColDescription, typeAt(bs, 200))
	assert.Equal(t, models.ColDebit, typeAt(bs, 385))
	assert.Equal(t, models.ColCredit, typeAt(bs, 465))
	assert.Equal(t, models.ColBalance, typeAt(bs, 550))
}

func TestHeaderAnchoredNoHeader(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	h := NewHeaderAnchored(det, cfg.Strategy)

	// Body rows only; the strategy should bow out rather than guess.
	lines := tableWithHeader(false)[1:]
	assert.Nil(t, h.Detect(lines))
}

func TestFontWeight(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	f := NewFontWeight(det)

	bs := f.Detect(tableWithHeader(true))
	require.NotEmpty(t, bs)
	assert.Equal(t, models.ColBalance, typeAt(bs, 550))

	// Without any bold line the strategy degrades to gutter detection
	// and still reports columns.
	bs = f.Detect(tableWithHeader(false))
	require.NotEmpty(t, bs)
	assert.Equal(t, models.ColBalance, typeAt(bs, 550))
}

func TestClusterCount(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	c := NewClusterCount(det)

	bs := c.Detect(tableWithHeader(false)[1:])
	require.NotEmpty(t, bs)
	assert.Equal(t, models.ColDate, typeAt(bs, 50))
	assert.Equal(t, models.ColBalance, typeAt(bs, 550))
}

func TestScore(t *testing.T) {
	empty := Metrics{}
	assert.Zero(t, Score(empty))

	weak := Metrics{Columns: 3, TypedColumns: 1, PlausibleRows: 1}
	strong := Metrics{Columns: 5, TypedColumns: 5, PlausibleRows: 5, HasDate: true, HasBalance: true, CoveredFrac: 1, MeanConfidence: 0.9, BalanceDeltaFrac: 1}
	assert.Greater(t, Score(strong), Score(weak))
}

func TestMeasureBalanceDeltas(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	h := NewHeaderAnchored(det, cfg.Strategy)

	lines := tableWithHeader(false)
	bs := h.Detect(lines)
	require.NotEmpty(t, bs)

	m := Measure(lines, bs)
	// Every consecutive balance pair in the fixture is explained by the
	// row's own debit or credit.
	assert.Equal(t, 1.0, m.BalanceDeltaFrac)
	assert.Equal(t, 5, m.PlausibleRows)
	assert.True(t, m.HasDate)
	assert.True(t, m.HasBalance)
}

func TestPickWinnerPrefersSuccessful(t *testing.T) {
	cfg := config.Default().Strategy

	// The failing result outranks on raw score (seven typed columns)
	// but only found one plausible row; the successful one wins.
	failing := Result{
		Strategy: "cluster",
		Metrics:  Metrics{Columns: 7, TypedColumns: 7, PlausibleRows: 1, HasDate: true, HasBalance: true},
	}
	succeeding := Result{
		Strategy: "geometry",
		Metrics:  Metrics{Columns: 4, TypedColumns: 2, PlausibleRows: 2, HasDate: true, HasBalance: true},
	}
	failing.Score = Score(failing.Metrics)
	succeeding.Score = Score(succeeding.Metrics)
	require.Greater(t, failing.Score, succeeding.Score)

	winner, low := pickWinner([]Result{failing, succeeding}, cfg)
	assert.Equal(t, "geometry", winner.Strategy)
	assert.False(t, low)

	// With no successful result the raw score decides, flagged.
	winner, low = pickWinner([]Result{failing}, cfg)
	assert.Equal(t, "cluster", winner.Strategy)
	assert.True(t, low)
}

func TestSelectorPicksConfidentResult(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	sel := NewSelector(det, cfg.Strategy)

	selection, err := sel.Select(context.Background(), tableWithHeader(false))
	require.NoError(t, err)
	require.NotEmpty(t, selection.Winner.Boundaries)

	assert.False(t, selection.LowConfidence)
	assert.Len(t, selection.Scores, 4)
	assert.Equal(t, models.ColBalance, typeAt(selection.Winner.Boundaries, 550))
}

func TestSelectorFlagsLowConfidence(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	sel := NewSelector(det, cfg.Strategy)

	// A region with no dates or amounts cannot produce plausible rows.
	var lines []models.Line
	for i := 0; i < 4; i++ {
		top := 100 + float64(i)*14
		lines = append(lines, models.Line{Page: 1, Top: top, Bottom: top + 10, Tokens: []models.Token{
			leftTok("lorem", 40, top),
			leftTok("ipsum", 400, top),
		}})
	}
	selection, err := sel.Select(context.Background(), lines)
	require.NoError(t, err)
	assert.True(t, selection.LowConfidence)
}

func TestSelectorCancelledContext(t *testing.T) {
	cfg := config.Default()
	det := columns.NewDetector(cfg.Columns)
	sel := NewSelector(det, cfg.Strategy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sel.Select(ctx, tableWithHeader(false))
	assert.Error(t, err)
}
