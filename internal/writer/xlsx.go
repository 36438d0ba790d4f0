package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/pipeline"
)

// XLSXWriter writes conversion results as an Excel workbook, one sheet
// of transactions plus a summary sheet with the per-segment balances
// and validation counts.
type XLSXWriter struct{}

const (
	txnSheet     = "Transactions"
	summarySheet = "Summary"
)

// WriteToFile writes the result to an XLSX file at the given path.
func (w *XLSXWriter) WriteToFile(path string, res pipeline.Result) error {
	f, err := w.build(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// Write streams the workbook to the given writer.
func (w *XLSXWriter) Write(out io.Writer, res pipeline.Result) error {
	f, err := w.build(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(res pipeline.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", txnSheet)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, h := range columnHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(txnSheet, cell, h)
	}
	f.SetCellStyle(txnSheet, "A1", "G1", bold)

	rowNum := 2
	for _, seg := range res.Segments {
		for _, t := range seg.Transactions {
			setRow(f, txnSheet, rowNum, t)
			rowNum++
		}
	}
	f.SetColWidth(txnSheet, "B", "B", 48)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	writeSummary(f, res, bold)
	return f, nil
}

func setRow(f *excelize.File, sheet string, rowNum int, t models.ParsedTransaction) {
	set := func(col int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, rowNum)
		f.SetCellValue(sheet, cell, v)
	}
	set(1, displayDate(t))
	set(2, t.Description)
	set(3, t.Reference)
	if t.Debit != nil {
		set(4, *t.Debit)
	}
	if t.Credit != nil {
		set(5, *t.Credit)
	}
	if t.Balance != nil {
		set(6, *t.Balance)
	}
	set(7, string(t.Status))
}

func writeSummary(f *excelize.File, res pipeline.Result, boldStyle int) {
	d := res.Diagnostics
	row := 1
	put := func(label string, value interface{}) {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(summarySheet, labelCell, label)
		f.SetCellValue(summarySheet, valueCell, value)
		f.SetCellStyle(summarySheet, labelCell, labelCell, boldStyle)
		row++
	}

	put("Institution", d.Institution)
	put("Account Holder", d.Account.Holder)
	put("Account Number", d.Account.Number)
	put("Statement Period", d.Account.Period)
	put("Currency", d.Currency)
	put("Pages", d.Pages)
	put("Detection Strategy", d.Strategy)
	row++

	for i, seg := range res.Segments {
		put(fmt.Sprintf("Segment %d opening", i+1), seg.OpeningBalance)
		put(fmt.Sprintf("Segment %d closing", i+1), seg.ClosingBalance)
		put(fmt.Sprintf("Segment %d transactions", i+1), len(seg.Transactions))
		put(fmt.Sprintf("Segment %d valid/warning/error", i+1),
			fmt.Sprintf("%d/%d/%d", seg.ValidCount, seg.WarningCount, seg.ErrorCount))
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
}
