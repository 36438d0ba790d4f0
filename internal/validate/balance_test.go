package validate

import (
	"testing"

	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/normalize"
	"github.com/insightdelivered/statement-tabulator/internal/rows"
)

func ptr(v float64) *float64 { return &v }

func txn(date string, debit, credit *float64, balance *float64) models.ParsedTransaction {
	return models.ParsedTransaction{
		Date:    date,
		Debit:   debit,
		Credit:  credit,
		Balance: balance,
		Status:  models.StatusUnvalidated,
	}
}

func TestValidChain(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, ptr(1300.00)),
		txn("2024-01-16", nil, ptr(50.00), ptr(1350.00)),
		txn("2024-01-17", ptr(100.00), nil, ptr(1250.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "1,500.00", Index: 0}}

	segs := v.Segment(txns, openings, nil, normalize.GroupingWestern)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	seg := segs[0]
	if seg.OpeningBalance != 1500.00 {
		t.Errorf("opening: %f", seg.OpeningBalance)
	}
	if seg.ValidCount != 3 || seg.ErrorCount != 0 {
		t.Errorf("counts: valid=%d error=%d", seg.ValidCount, seg.ErrorCount)
	}
	if seg.ClosingBalance != 1250.00 {
		t.Errorf("closing: %f", seg.ClosingBalance)
	}
	for _, tx := range seg.Transactions {
		if tx.Status != models.StatusValid {
			t.Errorf("%s: status %v", tx.Date, tx.Status)
		}
	}
}

func TestErrorDoesNotCascade(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// The middle row's printed balance breaks the law; the rows after
	// it validate against the printed balance, not the computed chain.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, ptr(1300.00)),
		txn("2024-01-16", nil, ptr(50.00), ptr(9999.00)),
		txn("2024-01-17", ptr(100.00), nil, ptr(9899.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "1,500.00", Index: 0}}

	seg := v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	statuses := []models.ValidationStatus{
		seg.Transactions[0].Status,
		seg.Transactions[1].Status,
		seg.Transactions[2].Status,
	}
	want := []models.ValidationStatus{models.StatusValid, models.StatusError, models.StatusValid}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("row %d: got %v, want %v", i, statuses[i], want[i])
		}
	}
	if seg.ErrorCount != 1 {
		t.Errorf("error count: %d", seg.ErrorCount)
	}
	if seg.Transactions[1].Discrepancy == 0 {
		t.Error("discrepancy not recorded")
	}
}

func TestSwappedSidesDowngradeToWarning(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// 50.00 recorded as a debit when the balance says credit.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(50.00), nil, ptr(1550.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "1,500.00", Index: 0}}

	seg := v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	if seg.Transactions[0].Status != models.StatusWarning {
		t.Errorf("status: %v, want warning", seg.Transactions[0].Status)
	}
	if seg.WarningCount != 1 {
		t.Errorf("warning count: %d", seg.WarningCount)
	}
}

func TestOverdraftFlag(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(700.00), nil, ptr(-200.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "500.00", Index: 0}}

	seg := v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	if !seg.Transactions[0].Overdraft {
		t.Error("overdraft not flagged")
	}
	if seg.Transactions[0].Status != models.StatusValid {
		t.Errorf("status: %v", seg.Transactions[0].Status)
	}
}

func TestDerivedOpeningBalance(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// No opening-balance row: the opening reconstructs from the first
	// transaction's balance and amount.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, ptr(1300.00)),
		txn("2024-01-16", nil, ptr(50.00), ptr(1350.00)),
	}

	segs := v.Segment(txns, nil, nil, normalize.GroupingWestern)
	if len(segs) != 1 {
		t.Fatalf("segments: %d", len(segs))
	}
	seg := segs[0]
	if !seg.DerivedOpening {
		t.Error("derived flag not set")
	}
	if seg.OpeningBalance != 1500.00 {
		t.Errorf("derived opening: %f", seg.OpeningBalance)
	}
	if seg.Transactions[1].Status != models.StatusValid {
		t.Errorf("second row: %v", seg.Transactions[1].Status)
	}
}

func TestOpeningRowsSplitSegments(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// Two concatenated statements, each with its own opening balance.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, ptr(1300.00)),
		txn("2024-02-15", ptr(100.00), nil, ptr(2400.00)),
	}
	openings := []rows.BalanceRow{
		{AmountRaw: "1,500.00", Index: 0},
		{AmountRaw: "2,500.00", Index: 1},
	}

	segs := v.Segment(txns, openings, nil, normalize.GroupingWestern)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].OpeningBalance != 1500.00 || segs[1].OpeningBalance != 2500.00 {
		t.Errorf("openings: %f, %f", segs[0].OpeningBalance, segs[1].OpeningBalance)
	}
	if len(segs[0].Transactions) != 1 || len(segs[1].Transactions) != 1 {
		t.Errorf("transaction split: %d, %d", len(segs[0].Transactions), len(segs[1].Transactions))
	}
	for _, seg := range segs {
		if seg.ErrorCount != 0 {
			t.Errorf("unexpected errors: %+v", seg)
		}
	}
}

func TestClosingRowPinsClosingBalance(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, ptr(1300.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "1,500.00", Index: 0}}
	closings := []rows.BalanceRow{{AmountRaw: "1,300.00", Index: 1}}

	seg := v.Segment(txns, openings, closings, normalize.GroupingWestern)[0]
	if seg.ClosingBalance != 1300.00 {
		t.Errorf("closing: %f", seg.ClosingBalance)
	}
	if seg.DerivedClosing {
		t.Error("closing should be printed, not derived")
	}
}

func TestCurrencyTolerance(t *testing.T) {
	// JPY rounds to whole units; a 0.4 discrepancy is inside tolerance.
	v := New(config.Default().Validate, "JPY")

	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(1000), nil, ptr(49000.4)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "50,000", Index: 0}}

	seg := v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	if seg.Transactions[0].Status != models.StatusValid {
		t.Errorf("JPY tolerance: %v", seg.Transactions[0].Status)
	}

	// The same slack fails under the default tolerance.
	v = New(config.Default().Validate, "")
	seg = v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	if seg.Transactions[0].Status == models.StatusValid {
		t.Error("default tolerance should reject a 0.4 discrepancy")
	}
}

func TestRowsWithoutBalanceAreUnvalidated(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// The first row printed no balance but its debit still moved the
	// money: 1500 - 200 + 50 = 1350, so the second row is consistent.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, nil),
		txn("2024-01-16", nil, ptr(50.00), ptr(1350.00)),
	}
	openings := []rows.BalanceRow{{AmountRaw: "1,500.00", Index: 0}}

	seg := v.Segment(txns, openings, nil, normalize.GroupingWestern)[0]
	if seg.Transactions[0].Status != models.StatusUnvalidated {
		t.Errorf("balance-less row: %v", seg.Transactions[0].Status)
	}
	if seg.Transactions[1].Status != models.StatusValid {
		t.Errorf("row after balance-less row: %v (note %q)",
			seg.Transactions[1].Status, seg.Transactions[1].Note)
	}
	if seg.ErrorCount != 0 {
		t.Errorf("error count: %d", seg.ErrorCount)
	}
}

func TestDerivedOpeningSkipsBalancelessLead(t *testing.T) {
	v := New(config.Default().Validate, "GBP")

	// No opening row and the first transaction printed no balance; the
	// derived opening backs its debit out of the first printed balance:
	// 1350 - 50 + 200 = 1500.
	txns := []models.ParsedTransaction{
		txn("2024-01-15", ptr(200.00), nil, nil),
		txn("2024-01-16", nil, ptr(50.00), ptr(1350.00)),
		txn("2024-01-17", ptr(100.00), nil, ptr(1250.00)),
	}

	seg := v.Segment(txns, nil, nil, normalize.GroupingWestern)[0]
	if !seg.DerivedOpening {
		t.Error("derived flag not set")
	}
	if seg.OpeningBalance != 1500.00 {
		t.Errorf("derived opening: %f", seg.OpeningBalance)
	}
	if seg.Transactions[2].Status != models.StatusValid {
		t.Errorf("third row: %v", seg.Transactions[2].Status)
	}
	if seg.ErrorCount != 0 {
		t.Errorf("error count: %d", seg.ErrorCount)
	}
}
