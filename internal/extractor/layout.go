package extractor

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/insightdelivered/statement-tabulator/internal/models"
)

// Synthetic geometry for the text-only fallbacks: one character column
// maps to this many page units, one text line to this line height.
// The downstream detectors only need relative positions, so the scale
// is arbitrary as long as it is consistent.
const (
	synthCharWidth  = 6.0
	synthLineHeight = 12.0
)

// TokensFromPages reconstructs positioned tokens from layout-preserving
// text, where column alignment survives as runs of spaces. Each cell,
// a run of non-space characters with single internal spaces, becomes
// one token; two or more spaces end a cell.
func TokensFromPages(pages []string) []models.Token {
	var tokens []models.Token
	for pageIdx, page := range pages {
		lineNo := 0
		for _, line := range strings.Split(page, "\n") {
			lineNo++
			if strings.TrimSpace(line) == "" {
				continue
			}
			top := float64(lineNo) * synthLineHeight
			for _, cell := range splitLayoutCells(line) {
				tokens = append(tokens, models.Token{
					Text:   cell.text,
					Page:   pageIdx + 1,
					X0:     float64(cell.start) * synthCharWidth,
					X1:     float64(cell.end) * synthCharWidth,
					Top:    top,
					Bottom: top + synthLineHeight*0.8,
				})
			}
		}
	}
	return tokens
}

type layoutCell struct {
	text       string
	start, end int // rune columns
}

// splitLayoutCells cuts a layout line at runs of 2+ spaces and then
// splits each cell into words, keeping rune-column positions.
func splitLayoutCells(line string) []layoutCell {
	var cells []layoutCell
	runes := []rune(line)

	i := 0
	for i < len(runes) {
		if runes[i] == ' ' || runes[i] == '\t' {
			i++
			continue
		}
		start := i
		// Extend until a run of 2+ spaces or a tab.
		for i < len(runes) {
			if runes[i] == '\t' {
				break
			}
			if runes[i] == ' ' {
				if i+1 >= len(runes) || runes[i+1] == ' ' {
					break
				}
			}
			i++
		}
		text := strings.TrimSpace(string(runes[start:i]))
		if text != "" {
			for _, w := range splitCellWords(text, start) {
				cells = append(cells, w)
			}
		}
	}
	return cells
}

// splitCellWords breaks a cell into word tokens so the projection step
// sees the same granularity as the positioned extraction path.
func splitCellWords(text string, startCol int) []layoutCell {
	var words []layoutCell
	col := startCol
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if runes[i] == ' ' {
			i++
			continue
		}
		ws := i
		for i < len(runes) && runes[i] != ' ' {
			i++
		}
		words = append(words, layoutCell{
			text:  string(runes[ws:i]),
			start: col + ws,
			end:   col + i,
		})
	}
	return words
}

// extractWithPdftotext shells out to poppler's pdftotext in layout
// mode, page by page so page boundaries survive.
func extractWithPdftotext(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages := pdfPageCount(filePath)
	if numPages < 1 {
		numPages = 1
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", pageStr, "-l", pageStr, filePath, "-").Output()
		if err != nil {
			continue
		}
		if text := strings.TrimRight(string(out), "\n\f "); strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %w", err)
		}
		text := strings.TrimSpace(string(out))
		if text == "" {
			return nil, fmt.Errorf("pdftotext produced no output")
		}
		pages = strings.Split(text, "\f")
	}
	return pages, nil
}

// pdfPageCount asks pdfinfo for the page count, 0 when unavailable.
func pdfPageCount(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil {
				return n
			}
		}
	}
	return 0
}
