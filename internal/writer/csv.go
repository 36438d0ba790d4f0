// Package writer serializes conversion results to CSV and XLSX.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/pipeline"
)

var columnHeader = []string{"Date", "Description", "Reference", "Debit", "Credit", "Balance", "Status"}

// CSVWriter writes conversion results as CSV.
type CSVWriter struct {
	// IncludeMetadata prepends commented metadata rows (institution,
	// account, period) before the column header.
	IncludeMetadata bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %q: %w", path, err)
	}
	defer f.Close()
	return w.Write(f, res)
}

// Write writes the result in CSV format. Segments concatenate in
// document order; each segment after the first is preceded by its
// opening-balance row so the boundary stays visible in the output.
func (w *CSVWriter) Write(out io.Writer, res pipeline.Result) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeMetadata {
		d := res.Diagnostics
		meta := [][2]string{
			{"# Institution", d.Institution},
			{"# Account Holder", d.Account.Holder},
			{"# Account Number", d.Account.Number},
			{"# Sort Code", d.Account.SortCode},
			{"# Statement Period", d.Account.Period},
			{"# Currency", d.Currency},
		}
		for _, m := range meta {
			if m[1] != "" {
				cw.Write([]string{m[0], m[1]})
			}
		}
	}

	if err := cw.Write(columnHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for segIdx, seg := range res.Segments {
		if segIdx > 0 {
			cw.Write([]string{"", "Opening Balance", "", "", "", formatFloat(seg.OpeningBalance), ""})
		}
		for _, t := range seg.Transactions {
			row := []string{
				displayDate(t),
				t.Description,
				t.Reference,
				formatPtr(t.Debit),
				formatPtr(t.Credit),
				formatPtr(t.Balance),
				string(t.Status),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	return nil
}

// displayDate prefers the normalized ISO date, falling back to the raw
// statement text so unparsed rows are never blanked out.
func displayDate(t models.ParsedTransaction) string {
	if t.Date != "" {
		return t.Date
	}
	return t.RawDate
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
