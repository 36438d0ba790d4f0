package columns

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
)

// headerKeywords maps exact column-header text to a column type. A
// literal header match wins over every content heuristic.
var headerKeywords = map[string]models.ColumnType{
	"date":             models.ColDate,
	"txn date":         models.ColDate,
	"tran date":        models.ColDate,
	"transaction date": models.ColDate,
	"post date":        models.ColDate,
	"posting date":     models.ColDate,

	"value date": models.ColValueDate,
	"val date":   models.ColValueDate,
	"value dt":   models.ColValueDate,

	"description":              models.ColDescription,
	"particulars":              models.ColDescription,
	"narration":                models.ColDescription,
	"details":                  models.ColDescription,
	"transaction details":      models.ColDescription,
	"payment type and details": models.ColDescription,
	"transaction description":  models.ColDescription,

	"debit":       models.ColDebit,
	"debits":      models.ColDebit,
	"withdrawal":  models.ColDebit,
	"withdrawals": models.ColDebit,
	"paid out":    models.ColDebit,
	"money out":   models.ColDebit,
	"dr":          models.ColDebit,

	"credit":   models.ColCredit,
	"credits":  models.ColCredit,
	"deposit":  models.ColCredit,
	"deposits": models.ColCredit,
	"paid in":  models.ColCredit,
	"money in": models.ColCredit,
	"cr":       models.ColCredit,

	"balance":         models.ColBalance,
	"running balance": models.ColBalance,
	"closing balance": models.ColBalance,

	"amount":             models.ColAmount,
	"transaction amount": models.ColAmount,
	"amount (inr)":       models.ColAmount,

	"ref":        models.ColReference,
	"ref no":     models.ColReference,
	"ref. no.":   models.ColReference,
	"reference":  models.ColReference,
	"cheque no":  models.ColReference,
	"chq no":     models.ColReference,
	"chq/ref no": models.ColReference,
}

// HeaderKeywordType resolves exact header-cell text to a column type.
func HeaderKeywordType(cell string) (models.ColumnType, bool) {
	t, ok := headerKeywords[strings.ToLower(normalize.NormalizeWhitespace(cell))]
	return t, ok
}

var referenceShape = regexp.MustCompile(`^[A-Za-z0-9/-]{3,18}$`)

// colStats accumulates per-column content evidence across lines.
type colStats struct {
	span       Span
	cells      []string
	headerType models.ColumnType
	hasHeader  bool

	dateRatio    float64
	numericRatio float64
	textRatio    float64
	leftVar      float64
	rightVar     float64
	debitMarks   int
	creditMarks  int
	nonEmpty     int
}

func (s *colStats) width() float64 { return s.span.X1 - s.span.X0 }

// rightAligned reports whether the column's cells line up on their
// right edges, the ledger convention for numeric columns. A near-zero
// right variance qualifies on its own; otherwise the right edges must
// be markedly steadier than the left ones.
func (s *colStats) rightAligned() bool {
	if s.nonEmpty < 2 {
		return false
	}
	return s.rightVar < 1.0 || s.rightVar < s.leftVar*0.5
}

// Classify scores each span's content and assigns semantic types
// following the ledger-convention decision order. The result always
// contains at least one date and one balance column.
func (d *Detector) Classify(lines []models.Line, spans []Span) []models.ColumnBoundary {
	if len(spans) == 0 {
		return nil
	}

	stats := d.collectStats(lines, spans)

	boundaries := make([]models.ColumnBoundary, len(spans))
	for i := range boundaries {
		boundaries[i] = models.ColumnBoundary{
			X0:   spans[i].X0,
			X1:   spans[i].X1,
			Type: models.ColUnknown,
		}
	}

	// 1. Literal header keywords win outright.
	for i, s := range stats {
		if s.hasHeader {
			boundaries[i].Type = s.headerType
			boundaries[i].Confidence = 0.95
		}
	}

	// 2. A numeric column carrying both debit- and credit-suffixed
	// values is a merged amount column.
	for i, s := range stats {
		if boundaries[i].Type != models.ColUnknown {
			continue
		}
		if s.numericRatio >= 0.6 && s.debitMarks > 0 && s.creditMarks > 0 {
			boundaries[i].Type = models.ColAmount
			boundaries[i].Confidence = 0.9
		}
	}

	// 3. High date score.
	for i, s := range stats {
		if boundaries[i].Type != models.ColUnknown {
			continue
		}
		if s.dateRatio >= 0.5 && s.dateRatio > s.numericRatio {
			boundaries[i].Type = models.ColDate
			boundaries[i].Confidence = 0.5 + s.dateRatio/2
		}
	}

	// 4. Right-aligned numeric columns, ranked right to left:
	// balance, then credit, then debit (standard ledger order).
	numericOrder := []models.ColumnType{models.ColBalance, models.ColCredit, models.ColDebit}
	taken := map[models.ColumnType]bool{}
	for _, b := range boundaries {
		taken[b.Type] = true
	}
	rank := 0
	for i := len(stats) - 1; i >= 0 && rank < len(numericOrder); i-- {
		if boundaries[i].Type != models.ColUnknown {
			continue
		}
		s := stats[i]
		if s.numericRatio >= 0.6 && (s.rightAligned() || s.nonEmpty < 2) {
			for rank < len(numericOrder) && taken[numericOrder[rank]] {
				rank++
			}
			if rank == len(numericOrder) {
				break
			}
			boundaries[i].Type = numericOrder[rank]
			boundaries[i].Confidence = 0.4 + s.numericRatio/2
			taken[numericOrder[rank]] = true
			rank++
		}
	}

	// 5. The widest, most textual column is the description.
	if !taken[models.ColDescription] {
		best, bestScore := -1, 0.0
		for i, s := range stats {
			if boundaries[i].Type != models.ColUnknown {
				continue
			}
			score := s.textRatio * s.width()
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			boundaries[best].Type = models.ColDescription
			boundaries[best].Confidence = 0.6
		}
	}

	// 6. Narrow alphanumeric columns are references.
	for i, s := range stats {
		if boundaries[i].Type != models.ColUnknown {
			continue
		}
		if s.nonEmpty > 0 && s.width() < 80 && referenceRatio(s.cells) >= 0.6 {
			boundaries[i].Type = models.ColReference
			boundaries[i].Confidence = 0.5
		}
	}

	d.postProcess(boundaries, stats)
	return boundaries
}

// postProcess guarantees the structural minimum: at least one date and
// one balance column, a single date (extras demoted to value_date), and
// a resolution for a lone unknown numeric column.
func (d *Detector) postProcess(boundaries []models.ColumnBoundary, stats []colStats) {
	// Demote a second date-like column to value_date.
	seenDate := false
	for i := range boundaries {
		if boundaries[i].Type == models.ColDate {
			if seenDate {
				boundaries[i].Type = models.ColValueDate
			}
			seenDate = true
		}
	}

	if !seenDate {
		// Fall back to the leftmost column: statements put the date first.
		if len(boundaries) > 0 {
			boundaries[0].Type = models.ColDate
			boundaries[0].Confidence = math.Min(boundaries[0].Confidence, 0.3)
			if boundaries[0].Confidence == 0 {
				boundaries[0].Confidence = 0.2
			}
		}
	}

	hasBalance := false
	for _, b := range boundaries {
		if b.Type == models.ColBalance {
			hasBalance = true
		}
	}
	if !hasBalance {
		// Rightmost numeric column, else rightmost column outright.
		assigned := false
		for i := len(boundaries) - 1; i >= 0; i-- {
			if stats[i].numericRatio >= 0.5 && boundaries[i].Type != models.ColDate {
				boundaries[i].Type = models.ColBalance
				assigned = true
				break
			}
		}
		if !assigned && len(boundaries) > 0 {
			last := len(boundaries) - 1
			if boundaries[last].Type != models.ColDate {
				boundaries[last].Type = models.ColBalance
				boundaries[last].Confidence = 0.2
			}
		}
	}

	// A single remaining unknown numeric column between the date and the
	// balance resolves by sampling its cells for Dr/Cr suffixes.
	unknownIdx := -1
	unknownCount := 0
	for i, b := range boundaries {
		if b.Type == models.ColUnknown && stats[i].numericRatio >= 0.5 {
			unknownIdx = i
			unknownCount++
		}
	}
	if unknownCount == 1 {
		s := stats[unknownIdx]
		switch {
		case s.debitMarks > 0 && s.creditMarks > 0:
			boundaries[unknownIdx].Type = models.ColAmount
		case s.creditMarks > 0:
			boundaries[unknownIdx].Type = models.ColCredit
		case s.debitMarks > 0:
			boundaries[unknownIdx].Type = models.ColDebit
		default:
			boundaries[unknownIdx].Type = models.ColAmount
		}
		boundaries[unknownIdx].Confidence = 0.4
	}
}

// collectStats projects each line's tokens into the spans by center
// containment and derives the content scores.
func (d *Detector) collectStats(lines []models.Line, spans []Span) []colStats {
	stats := make([]colStats, len(spans))
	for i := range stats {
		stats[i].span = spans[i]
		stats[i].cells = make([]string, 0, len(lines))
	}

	type edges struct{ lefts, rights []float64 }
	colEdges := make([]edges, len(spans))

	for _, line := range lines {
		cells := make([]string, len(spans))
		cellLeft := make([]float64, len(spans))
		cellRight := make([]float64, len(spans))
		for i := range cellLeft {
			cellLeft[i] = math.Inf(1)
			cellRight[i] = math.Inf(-1)
		}
		for _, t := range line.Tokens {
			idx := spanIndex(spans, t.CenterX())
			if idx < 0 {
				continue
			}
			if cells[idx] != "" {
				cells[idx] += " "
			}
			cells[idx] += t.Text
			if t.X0 < cellLeft[idx] {
				cellLeft[idx] = t.X0
			}
			if t.X1 > cellRight[idx] {
				cellRight[idx] = t.X1
			}
		}
		for i, c := range cells {
			stats[i].cells = append(stats[i].cells, c)
			if c != "" {
				colEdges[i].lefts = append(colEdges[i].lefts, cellLeft[i])
				colEdges[i].rights = append(colEdges[i].rights, cellRight[i])
			}
		}
	}

	for i := range stats {
		s := &stats[i]
		var dates, numerics, texts int
		for _, c := range s.cells {
			if c == "" {
				continue
			}
			s.nonEmpty++
			switch {
			case normalize.LooksLikeDate(c):
				dates++
			case normalize.LooksLikeAmount(c):
				numerics++
				switch normalize.MarkerSide(c) {
				case normalize.SideDebit:
					s.debitMarks++
				case normalize.SideCredit:
					s.creditMarks++
				}
			default:
				texts++
			}
			if t, ok := HeaderKeywordType(c); ok && !s.hasHeader {
				s.headerType = t
				s.hasHeader = true
			}
		}
		if s.nonEmpty > 0 {
			s.dateRatio = float64(dates) / float64(s.nonEmpty)
			s.numericRatio = float64(numerics) / float64(s.nonEmpty)
			s.textRatio = float64(texts) / float64(s.nonEmpty)
		}
		s.leftVar = variance(colEdges[i].lefts)
		s.rightVar = variance(colEdges[i].rights)
	}
	return stats
}

// spanIndex finds the span containing x, or -1.
func spanIndex(spans []Span, x float64) int {
	idx := sort.Search(len(spans), func(i int) bool { return spans[i].X1 >= x })
	if idx < len(spans) && x >= spans[idx].X0 && x <= spans[idx].X1 {
		return idx
	}
	return -1
}

func referenceRatio(cells []string) float64 {
	matched, nonEmpty := 0, 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		nonEmpty++
		if referenceShape.MatchString(c) && !normalize.LooksLikeDate(c) {
			matched++
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	return float64(matched) / float64(nonEmpty)
}

func variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}
