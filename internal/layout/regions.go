package layout

import (
	"strings"

	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// sectionHeaderLiterals break a candidate region when a line matches one.
// These are section titles, not column headers; a column header line has
// the same cardinality as the table and stays inside the region.
var sectionHeaderLiterals = []string{
	"account summary",
	"statement summary",
	"summary of account",
	"interest details",
	"interest summary",
	"important information",
	"statement of account",
	"transaction details",
	"other account information",
}

// Segmenter groups lines into table regions.
type Segmenter struct {
	cfg config.LayoutConfig
}

// NewSegmenter returns a segmenter with the given layout tuning.
func NewSegmenter(cfg config.LayoutConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment scans the lines in order, extending a candidate region while
// consecutive token counts stay within the cardinality tolerance. The
// candidate breaks on a section-header line, an oversized vertical gap,
// or cardinality divergence, and is emitted only once it has
// accumulated the minimum number of consistent lines. A merge pass then
// folds adjacent regions fragmented by stray noisy lines.
func (s *Segmenter) Segment(lines []models.Line) []models.TableRegion {
	var regions []models.TableRegion
	var current []models.Line

	flush := func() {
		if len(current) >= s.cfg.MinRegionLines {
			regions = append(regions, newRegion(current))
		}
		current = nil
	}

	for _, line := range lines {
		if isSectionHeader(line.Text()) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			sameGap := line.Page == prev.Page && line.Top-prev.Bottom > s.cfg.MaxLineGap
			diverged := absInt(len(line.Tokens)-len(prev.Tokens)) > s.cfg.CardinalityTolerance
			if sameGap || diverged {
				flush()
			}
		}
		current = append(current, line)
	}
	flush()

	return s.merge(regions)
}

// merge folds neighboring regions whose average token counts differ by
// no more than the merge tolerance. Fragmentation from a single noisy
// line otherwise splits one logical table into several regions.
func (s *Segmenter) merge(regions []models.TableRegion) []models.TableRegion {
	if len(regions) < 2 {
		return regions
	}
	merged := []models.TableRegion{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		neighboring := r.FirstPage-last.LastPage <= 1
		if neighboring && absFloat(last.AvgTokensPerLine()-r.AvgTokensPerLine()) <= s.cfg.MergeTolerance {
			last.Lines = append(last.Lines, r.Lines...)
			if r.LastPage > last.LastPage {
				last.LastPage = r.LastPage
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func newRegion(lines []models.Line) models.TableRegion {
	r := models.TableRegion{
		Lines:     append([]models.Line(nil), lines...),
		FirstPage: lines[0].Page,
		LastPage:  lines[0].Page,
	}
	for _, l := range lines[1:] {
		if l.Page < r.FirstPage {
			r.FirstPage = l.Page
		}
		if l.Page > r.LastPage {
			r.LastPage = l.Page
		}
	}
	return r
}

func isSectionHeader(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, lit := range sectionHeaderLiterals {
		if strings.Contains(lower, lit) {
			return true
		}
	}
	return false
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
