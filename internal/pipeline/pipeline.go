// Package pipeline wires the detection stages end to end: line
// grouping, region segmentation, multi-strategy column detection,
// cross-table reconciliation, row extraction and stitching,
// normalization, and balance validation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/insightdelivered/statement-tabulator/internal/columns"
	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/hints"
	"github.com/insightdelivered/statement-tabulator/internal/layout"
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
	"github.com/insightdelivered/statement-tabulator/internal/rows"
	"github.com/insightdelivered/statement-tabulator/internal/strategy"
	"github.com/insightdelivered/statement-tabulator/internal/validate"
)

// ErrNoTable reports that no table region could be found in the input.
var ErrNoTable = errors.New("no table region detected")

// Result is everything a conversion produces.
type Result struct {
	Segments    []models.DocumentSegment `json:"segments"`
	Diagnostics models.Diagnostics       `json:"diagnostics"`
}

// Transactions flattens the segments into one ordered slice.
func (r Result) Transactions() []models.ParsedTransaction {
	var out []models.ParsedTransaction
	for _, s := range r.Segments {
		out = append(out, s.Transactions...)
	}
	return out
}

// Options tweak a single run.
type Options struct {
	// Institution forces a hint by name instead of keyword matching.
	Institution string
	// Trace enables the per-row trace in the diagnostics.
	Trace bool
}

// Pipeline is a reusable converter bound to one configuration.
type Pipeline struct {
	cfg config.Config
	log *slog.Logger
}

// New builds a pipeline. A nil logger falls back to slog.Default.
func New(cfg config.Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Process converts positioned tokens into validated transactions.
func (p *Pipeline) Process(ctx context.Context, tokens []models.Token, opts Options) (Result, error) {
	var res Result
	diag := &res.Diagnostics

	lines := layout.GroupLines(tokens, p.cfg.Layout.LineEpsilon)
	diag.LinesTotal = len(lines)
	diag.Pages = pageCount(lines)

	hint := p.resolveHint(lines, opts)
	if hint != nil {
		diag.Institution = hint.Name
		diag.Currency = hint.Currency
	}
	diag.Account = scrapeAccountInfo(lines)

	regions := layout.NewSegmenter(p.cfg.Layout).Segment(lines)
	diag.RegionCount = len(regions)
	if len(regions) == 0 {
		return res, ErrNoTable
	}

	det := columns.NewDetector(p.cfg.Columns)
	selector := strategy.NewSelector(det, p.cfg.Strategy)

	// Per-region detection, then one document-wide reconciliation.
	bestScore := -1.0
	for i := range regions {
		sel, err := selector.Select(ctx, regions[i].Lines)
		if err != nil {
			return res, err
		}
		regions[i].Boundaries = sel.Winner.Boundaries
		if sel.Winner.Score > bestScore {
			bestScore = sel.Winner.Score
			diag.Strategy = sel.Winner.Strategy
			diag.StrategyScores = sel.Scores
			diag.LowConfidence = sel.LowConfidence
		}
	}
	columnMap := det.Reconcile(regions)
	if len(columnMap) == 0 {
		return res, ErrNoTable
	}
	diag.ColumnMap = columnMap
	p.log.Debug("column map resolved",
		"columns", len(columnMap),
		"strategy", diag.Strategy,
		"regions", len(regions))

	// Extraction and classification, region by region, against the
	// reconciled document-wide map.
	classifier := rows.NewClassifier(hint)
	groups := make([][]models.ExtractedRow, 0, len(regions))
	for _, region := range regions {
		extracted := rows.Extract(region, columnMap)
		classifier.Classify(extracted)
		for i := range extracted {
			if extracted[i].Kind == models.RowTransaction && rows.IsLikelyHeader(extracted[i]) {
				extracted[i].Kind = models.RowNoise
			}
			diag.RowsExtracted++
			if opts.Trace {
				diag.RowTrace = append(diag.RowTrace, models.RowTrace{
					Page:   extracted[i].Page,
					Text:   extracted[i].Raw,
					Kind:   extracted[i].Kind,
					Tokens: extracted[i].TokenCount,
				})
			}
		}
		groups = append(groups, extracted)
	}

	stitched := rows.Stitch(groups)
	diag.RowsStitched = len(stitched.Transactions)
	diag.RowsSkipped = stitched.Skipped

	grouping := detectGrouping(stitched.Transactions)
	diag.NumberGrouping = string(grouping)
	if diag.Currency == "" {
		diag.Currency = detectCurrency(lines)
	}

	parsed := rows.Parse(stitched.Transactions, grouping)

	validator := validate.New(p.cfg.Validate, diag.Currency)
	res.Segments = validator.Segment(parsed, stitched.OpeningRows, stitched.ClosingRows, grouping)
	diag.SegmentCount = len(res.Segments)

	p.log.Info("conversion complete",
		"pages", diag.Pages,
		"transactions", len(parsed),
		"segments", diag.SegmentCount,
		"grouping", diag.NumberGrouping,
		"lowConfidence", diag.LowConfidence)
	return res, nil
}

// resolveHint picks the institution hint: an explicit name wins, else
// keyword matching over the document's first pages.
func (p *Pipeline) resolveHint(lines []models.Line, opts Options) *models.InstitutionHint {
	if opts.Institution != "" {
		if h, ok := hints.Lookup(opts.Institution); ok {
			return h
		}
		p.log.Warn("unknown institution, falling back to auto-detect", "institution", opts.Institution)
	}
	text := ""
	for i, l := range lines {
		if i > 60 {
			break
		}
		text += l.Text() + "\n"
	}
	if h, ok := hints.Match(text); ok {
		return h
	}
	return nil
}

// detectGrouping samples every amount cell so the convention vote sees
// the whole document, not one region.
func detectGrouping(stitched []models.StitchedTransaction) normalize.Grouping {
	var samples []string
	for _, s := range stitched {
		for _, cell := range []string{s.DebitRaw, s.CreditRaw, s.AmountRaw, s.BalanceRaw} {
			if cell != "" {
				samples = append(samples, cell)
			}
		}
	}
	return normalize.DetectGrouping(samples)
}

func pageCount(lines []models.Line) int {
	pages := map[int]bool{}
	for _, l := range lines {
		pages[l.Page] = true
	}
	return len(pages)
}
