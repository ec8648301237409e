package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/tradelog"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// headings parses a markdown document and returns the text of its headings.
func headings(t *testing.T, doc string) []string {
	t.Helper()
	source := []byte(doc)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var titles []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var title strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if txt, ok := c.(*ast.Text); ok {
				title.Write(txt.Segment.Value(source))
			}
		}
		titles = append(titles, title.String())
		return ast.WalkSkipChildren, nil
	})
	return titles
}

func TestTransaction(t *testing.T) {
	tests := []struct {
		tx   tradelog.Transaction
		want string
	}{
		{
			tx:   tradelog.Transaction{Type: tradelog.Buy, Symbol: "AAPL", Shares: dec("0.5"), Price: dec("200"), GrossAmount: dec("100")},
			want: "Bought 0.5 of AAPL at $200.00 for $100.00",
		},
		{
			tx:   tradelog.Transaction{Type: tradelog.Sell, Symbol: "MSFT", Shares: dec("2"), Price: dec("410.25"), GrossAmount: dec("820.5")},
			want: "Sold 2 of MSFT at $410.25 for $820.50",
		},
		{
			tx:   tradelog.Transaction{Type: tradelog.Dividend, Symbol: "KO", GrossAmount: dec("4.85")},
			want: "Dividend of $4.85 for KO",
		},
	}
	for _, tt := range tests {
		if got := Transaction(tt.tx); got != tt.want {
			t.Errorf("Transaction(%v) = %q, want %q", tt.tx.Type, got, tt.want)
		}
	}
}

func TestOptionTransaction(t *testing.T) {
	tx := tradelog.OptionTransaction{
		Type:         tradelog.Buy,
		OptionSymbol: tradelog.OptionSymbol{Underlying: "AAPL", Expiry: tradelog.NewDate(2025, 9, 12), Right: tradelog.Call, Strike: dec("240")},
		Contracts:    dec("1"),
		Price:        dec("1.25"),
		GrossAmount:  dec("125"),
	}
	want := "Bought 1 contracts of AAPL 2025-09-12 CALL 240 at $1.25 for $125.00"
	if got := OptionTransaction(tx); got != want {
		t.Errorf("OptionTransaction() = %q, want %q", got, want)
	}
}

func TestStatementMarkdown(t *testing.T) {
	r := tradelog.StatementResult{
		StatementDate: tradelog.NewDate(2024, 9, 5),
		Transactions: []tradelog.Transaction{
			{Type: tradelog.Buy, Symbol: "AAPL", Shares: dec("0.5"), Price: dec("200"), Commission: dec("0.15"), WithholdingTax: dec("0.01"), GrossAmount: dec("100")},
		},
		OptionTransactions: []tradelog.OptionTransaction{
			{
				Type:         tradelog.Sell,
				OptionSymbol: tradelog.OptionSymbol{Underlying: "TSLA", Expiry: tradelog.NewDate(2024, 9, 20), Right: tradelog.Put, Strike: dec("200")},
				Contracts:    dec("1"), Price: dec("3.1"), GrossAmount: dec("310"),
			},
		},
	}
	got := StatementMarkdown("note.pdf", r)

	if diff := cmp.Diff([]string{"Statement note.pdf", "Stocks", "Options"}, headings(t, got)); diff != "" {
		t.Errorf("StatementMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []string{"2024-09-05", "AAPL", "$100.00", "TSLA240920P00200000", "$310.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("StatementMarkdown() does not contain %q:\n%s", want, got)
		}
	}
}

func TestStatementMarkdown_empty(t *testing.T) {
	got := StatementMarkdown("", tradelog.StatementResult{StatementDate: tradelog.NewDate(2024, 9, 5)})
	if diff := cmp.Diff([]string{"Statement"}, headings(t, got)); diff != "" {
		t.Errorf("StatementMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got, "No transaction.") {
		t.Errorf("StatementMarkdown() = %q, want a no transaction notice", got)
	}
}

func TestRecordsMarkdown(t *testing.T) {
	records := []tradelog.LedgerRecord{
		{Date: tradelog.NewDate(2024, 9, 5), Portfolio: "Dime", Type: tradelog.Buy, Symbol: "AAPL", Amount: dec("100"), TotalAmount: dec("100.16"), Shares: dec("0.5")},
		{Date: tradelog.NewDate(2024, 9, 6), Portfolio: "Dime", Type: tradelog.Sell, Symbol: "AAPL", Amount: dec("-50"), TotalAmount: dec("-49.92"), Shares: dec("-0.25")},
	}
	got := RecordsMarkdown(records)
	for _, want := range []string{"Investment Log", "SEL", "+$100.16", "-$49.92", "+$50.24"} {
		if !strings.Contains(got, want) {
			t.Errorf("RecordsMarkdown() does not contain %q:\n%s", want, got)
		}
	}
}

func TestSnapshotMarkdown(t *testing.T) {
	s := tradelog.Snapshot{
		Date: tradelog.NewDate(2024, 9, 6),
		Rows: []tradelog.PositionSnapshot{
			{
				Date:         tradelog.NewDate(2024, 9, 6),
				Key:          tradelog.Key{Port: "Dime", ProductName: "AAPL"},
				Share:        dec("0.5"),
				AmountUSD:    dec("100"),
				IsMarketOpen: true,
				// TotalAmountUSD is zero, no total performance
				ClosingPrice: ptr("220"),
				Valuation:    ptr("110"),
				Performance:  ptr("0.1"),
			},
			{
				Date:         tradelog.NewDate(2024, 9, 6),
				Key:          tradelog.Key{Port: "Dime", ProductName: "NOPE"},
				Share:        dec("3"),
				AmountUSD:    dec("30"),
				IsMarketOpen: true,
			},
		},
	}
	got := SnapshotMarkdown(s)

	if diff := cmp.Diff([]string{"Assets on 2024-09-06"}, headings(t, got)); diff != "" {
		t.Errorf("SnapshotMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []string{"Market open", "$220.00", "$110.00", "+10.00%", "$130.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("SnapshotMarkdown() does not contain %q:\n%s", want, got)
		}
	}
}

func TestSnapshotMarkdown_closed(t *testing.T) {
	s := tradelog.Snapshot{
		Date: tradelog.NewDate(2024, 9, 7),
		Rows: []tradelog.PositionSnapshot{{Key: tradelog.Key{Port: "Dime", ProductName: "AAPL"}, Share: dec("1")}},
	}
	if got := SnapshotMarkdown(s); !strings.Contains(got, "Market closed") {
		t.Errorf("SnapshotMarkdown() = %q, want a market closed notice", got)
	}
	if got := SnapshotMarkdown(tradelog.Snapshot{Date: tradelog.NewDate(2024, 9, 7)}); !strings.Contains(got, "No position.") {
		t.Errorf("SnapshotMarkdown() = %q, want a no position notice", got)
	}
}
