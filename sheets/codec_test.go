package sheets

import (
	"strings"
	"testing"

	"github.com/etnz/tradelog"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b tradelog.Date) bool { return a == b }),
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var sellKO = tradelog.LedgerRecord{
	Date: tradelog.NewDate(2025, 1, 2), Portfolio: "Dime", Type: tradelog.Sell, Symbol: "KO",
	Sector: "Consumer Defensive", Industry: "Beverages - Non-Alcoholic", HasDividend: true,
	Price: dec("62.5"), Commission: dec("0.09"), Tax: dec("0.01"), Amount: dec("-62.5"), TotalAmount: dec("-62.4"),
	Shares: dec("-1"), Status: "Done", Note: "-",
}

func TestEncodeRecord(t *testing.T) {
	got := EncodeRecord(sellKO)
	want := []any{
		"2025-01-02", "Dime", "SEL", "KO", "Consumer Defensive", "Beverages - Non-Alcoholic", true,
		"62.5", "0.09", "0.01", "-62.5", "-62.4", "-1", "Done", "-",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodeRecord() mismatch (-want +got):\n%s", diff)
	}
	if len(got) != len(LedgerHeader) {
		t.Errorf("EncodeRecord() has %d cells, header has %d", len(got), len(LedgerHeader))
	}

	back, err := DecodeRecord(got)
	if err != nil {
		t.Fatalf("DecodeRecord() unexpected error: %v", err)
	}
	if diff := cmp.Diff(sellKO, back, cmpOpts); diff != "" {
		t.Errorf("DecodeRecord(EncodeRecord()) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRecord_unformatted(t *testing.T) {
	// as returned with UNFORMATTED_VALUE, the date being left as a serial number
	row := []any{45659.0, "Dime", "BUY", "AAPL", "Technology", "Consumer Electronics", "TRUE", 200.0, 0.15, 0.01, 100.0, 100.16, 0.5, "Done"}
	got, err := DecodeRecord(row)
	if err != nil {
		t.Fatalf("DecodeRecord() unexpected error: %v", err)
	}
	want := tradelog.LedgerRecord{
		Date: tradelog.NewDate(2025, 1, 2), Portfolio: "Dime", Type: tradelog.Buy, Symbol: "AAPL",
		Sector: "Technology", Industry: "Consumer Electronics", HasDividend: true,
		Price: dec("200"), Commission: dec("0.15"), Tax: dec("0.01"), Amount: dec("100"), TotalAmount: dec("100.16"),
		Shares: dec("0.5"), Status: "Done",
	}
	if diff := cmp.Diff(want, got, cmpOpts); diff != "" {
		t.Errorf("DecodeRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRecord_errors(t *testing.T) {
	tests := []struct {
		name   string
		row    []any
		column string
	}{
		{"bad date", []any{"yesterday", "Dime", "BUY"}, "Date"},
		{"bad type", []any{"2025-01-02", "Dime", "SWAP"}, "Type"},
		{"bad amount", []any{"2025-01-02", "Dime", "BUY", "AAPL", "", "", false, "12..5"}, "Stock Price (USD)"},
		{"bad flag", []any{"2025-01-02", "Dime", "BUY", "AAPL", "", "", "maybe"}, "Have Dividend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.row)
			if err == nil {
				t.Fatal("DecodeRecord() expected an error")
			}
			if !strings.Contains(err.Error(), tt.column) {
				t.Errorf("DecodeRecord() error = %v, want it to name column %q", err, tt.column)
			}
		})
	}
}

func TestEncodePosition(t *testing.T) {
	p := tradelog.PositionSnapshot{
		Date:           tradelog.NewDate(2025, 1, 3),
		Key:            tradelog.Key{Port: "Dime", ProductName: "AAPL", Sector: "Technology", Industry: "Consumer Electronics"},
		Share:          dec("0.5"),
		AmountUSD:      dec("100"),
		TotalAmountUSD: dec("100.16"),
		IsMarketOpen:   true,
		ClosingPrice:   ptr("243.36"),
		Valuation:      ptr("121.68"),
	}
	got := EncodePosition(p)
	want := []any{
		"2025-01-03", true, "Dime", "AAPL", "Technology", "Consumer Electronics",
		"0.5", "100", "100.16", "243.36", "121.68", "", "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodePosition() mismatch (-want +got):\n%s", diff)
	}

	back, err := DecodePosition(got)
	if err != nil {
		t.Fatalf("DecodePosition() unexpected error: %v", err)
	}
	if diff := cmp.Diff(p, back, cmpOpts); diff != "" {
		t.Errorf("DecodePosition(EncodePosition()) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePosition_cells(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want tradelog.PositionSnapshot
	}{
		{
			name: "trailing empty cells omitted",
			row:  []any{"2025-01-04", false, "Dime", "AAPL", "", "", 0.5, 100.0, 100.16},
			want: tradelog.PositionSnapshot{
				Date: tradelog.NewDate(2025, 1, 4), Key: tradelog.Key{Port: "Dime", ProductName: "AAPL"},
				Share: dec("0.5"), AmountUSD: dec("100"), TotalAmountUSD: dec("100.16"),
			},
		},
		{
			name: "formatted numbers",
			row:  []any{"2025-01-03", "TRUE", "Dime", "BRK.B", "", "", "2", "$1,000.00", "$1,001.60", "$512.30", "$1,024.60", "2.46%", "-"},
			want: tradelog.PositionSnapshot{
				Date: tradelog.NewDate(2025, 1, 3), Key: tradelog.Key{Port: "Dime", ProductName: "BRK.B"}, IsMarketOpen: true,
				Share: dec("2"), AmountUSD: dec("1000"), TotalAmountUSD: dec("1001.6"),
				ClosingPrice: ptr("512.3"), Valuation: ptr("1024.6"), Performance: ptr("0.0246"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePosition(tt.row)
			if err != nil {
				t.Fatalf("DecodePosition() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpOpts); diff != "" {
				t.Errorf("DecodePosition() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsHeader(t *testing.T) {
	if !isHeader(AssetHeader) || !isHeader(LedgerHeader) || !isHeader(nil) {
		t.Error("isHeader() = false for a header or blank row")
	}
	if isHeader(EncodeRecord(sellKO)) {
		t.Error("isHeader() = true for a record")
	}
}
