package normalize

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		grouping Grouping
		expected float64
		side     Side
		wantErr  bool
	}{
		{"25.99", GroupingWestern, 25.99, SideNone, false},
		{"1,234.56", GroupingWestern, 1234.56, SideNone, false},
		{"£1,234,567.89", GroupingWestern, 1234567.89, SideNone, false},
		{"-25.99", GroupingWestern, -25.99, SideNone, false},
		{"25.99-", GroupingWestern, -25.99, SideNone, false},
		{"(1,500.00)", GroupingWestern, -1500.00, SideNone, false},
		{"200.00 Dr", GroupingWestern, 200.00, SideDebit, false},
		{"200.00 Cr", GroupingWestern, 200.00, SideCredit, false},
		{"1,00,000.00", GroupingIndian, 100000.00, SideNone, false},
		{"₹2,50,500.75", GroupingIndian, 250500.75, SideNone, false},
		{"1.234,56", GroupingEuropean, 1234.56, SideNone, false},
		{"100.000,00", GroupingEuropean, 100000.00, SideNone, false},
		{"", GroupingWestern, 0, SideNone, true},
		{"abc", GroupingWestern, 0, SideNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, side, err := ParseAmount(tt.input, tt.grouping)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q): expected error, got %f", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): unexpected error %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
			if side != tt.side {
				t.Errorf("ParseAmount(%q): side %v, want %v", tt.input, side, tt.side)
			}
		})
	}
}

func TestDetectGrouping(t *testing.T) {
	tests := []struct {
		name     string
		samples  []string
		expected Grouping
	}{
		{
			name:     "western",
			samples:  []string{"1,234.56", "25.99", "100,000.00"},
			expected: GroupingWestern,
		},
		{
			name:     "indian lakh grouping",
			samples:  []string{"1,00,000.00", "2,50,500.75", "55,000.00", "3,20,000.00"},
			expected: GroupingIndian,
		},
		{
			name:     "european",
			samples:  []string{"1.234,56", "100.000,00", "25,99"},
			expected: GroupingEuropean,
		},
		{
			name:     "ambiguous defaults to western",
			samples:  []string{"25.99", "100.00"},
			expected: GroupingWestern,
		},
		{
			name:     "empty",
			samples:  nil,
			expected: GroupingWestern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectGrouping(tt.samples); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitMergedAmounts(t *testing.T) {
	t.Run("explicit markers win", func(t *testing.T) {
		cells := []string{"200.00 Dr", "350.00 Cr", "125.00 Dr"}
		got := SplitMergedAmounts(cells, GroupingWestern)
		wantSides := []Side{SideDebit, SideCredit, SideDebit}
		for i, w := range wantSides {
			if got[i].Side != w {
				t.Errorf("cell %d: side %v, want %v", i, got[i].Side, w)
			}
		}
	})

	t.Run("unsuffixed defaults to the absent side", func(t *testing.T) {
		// Only credits are marked, so bare cells read as debits.
		cells := []string{"200.00", "350.00 Cr", "125.00"}
		got := SplitMergedAmounts(cells, GroupingWestern)
		if got[0].Side != SideDebit || got[2].Side != SideDebit {
			t.Errorf("bare cells should default to debit: %+v", got)
		}

		// Only debits are marked, so bare cells read as credits.
		cells = []string{"200.00 Dr", "350.00", "125.00 Dr"}
		got = SplitMergedAmounts(cells, GroupingWestern)
		if got[1].Side != SideCredit {
			t.Errorf("bare cell should default to credit: %+v", got)
		}
	})

	t.Run("sign decides when no markers", func(t *testing.T) {
		cells := []string{"-200.00", "350.00"}
		got := SplitMergedAmounts(cells, GroupingWestern)
		if got[0].Side != SideDebit || got[0].Amount != 200.00 {
			t.Errorf("negative cell: %+v", got[0])
		}
		if got[1].Side != SideDebit {
			// No markers anywhere and positive sign: default side.
			t.Errorf("positive cell: %+v", got[1])
		}
	})

	t.Run("unparseable cells keep SideNone", func(t *testing.T) {
		cells := []string{"garbage", "200.00 Dr"}
		got := SplitMergedAmounts(cells, GroupingWestern)
		if got[0].Side != SideNone {
			t.Errorf("unparseable cell: %+v", got[0])
		}
	})
}

func TestLooksLikeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1,234.56", true},
		{"£25.99", true},
		{"(500.00)", true},
		{"200.00 Dr", true},
		{"1,00,000.00", true},
		{"1.234,56", true},
		{"CARD PAYMENT", false},
		{"15/01/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LooksLikeAmount(tt.input); got != tt.expected {
				t.Errorf("LooksLikeAmount(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractReference(t *testing.T) {
	tests := []struct {
		input       string
		wantText    string
		wantType    string
		wantValue   string
	}{
		{"NEFT TRANSFER UTR N12345678901234 TO SAVINGS", "NEFT TRANSFER TO SAVINGS", "UTR", "N12345678901234"},
		{"CHQ NO 123456 RENT", "RENT", "CHEQUE", "123456"},
		{"PAYMENT REF ABCD1234", "PAYMENT", "REF", "ABCD1234"},
		{"ORDINARY DESCRIPTION", "ORDINARY DESCRIPTION", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			text, ref := ExtractReference(tt.input)
			if text != tt.wantText {
				t.Errorf("text: got %q, want %q", text, tt.wantText)
			}
			if ref.Type != tt.wantType || ref.Value != tt.wantValue {
				t.Errorf("ref: got %+v, want {%s %s}", ref, tt.wantType, tt.wantValue)
			}
		})
	}
}

func TestExpandAbbreviations(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"TRF TO SAVINGS", "Transfer TO SAVINGS"},
		{"ATM WDL HIGH ST", "ATM Withdrawal HIGH ST"},
		{"ordinary words untouched", "ordinary words untouched"},
		// Lowercase occurrences are not abbreviations.
		{"trf remains", "trf remains"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandAbbreviations(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
