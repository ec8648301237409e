package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/tradelog"
	"github.com/shopspring/decimal"
)

// LedgerHeader is the header row of the investment log.
var LedgerHeader = []any{
	"Date", "Port", "Type", "Product Name", "Sector", "Industry", "Have Dividend",
	"Stock Price (USD)", "Commission (USD)", "Tax (USD)", "Amount (USD)", "Total Amount (USD)",
	"Share", "Status", "Note",
}

// AssetHeader is the header row of the asset log.
var AssetHeader = []any{
	"Date", "Is Market Open", "Port", "Product Name", "Sector", "Industry",
	"Share", "Amount (USD)", "Total Amount (USD)",
	"Closing Stock Price", "Valuation", "Performance", "Total Performance",
}

// isHeader reports whether row is a header row, or blank.
func isHeader(row []any) bool {
	return len(row) == 0 || cellString(row[0]) == "Date"
}

// EncodeRecord returns the investment log row of r.
func EncodeRecord(r tradelog.LedgerRecord) []any {
	return []any{
		r.Date.String(), r.Portfolio, string(r.Type), r.Symbol, r.Sector, r.Industry, r.HasDividend,
		r.Price.String(), r.Commission.String(), r.Tax.String(), r.Amount.String(), r.TotalAmount.String(),
		r.Shares.String(), r.Status, r.Note,
	}
}

// DecodeRecord reads an investment log row.
func DecodeRecord(row []any) (tradelog.LedgerRecord, error) {
	c := cells{row: row, header: LedgerHeader}
	r := tradelog.LedgerRecord{
		Date:        c.date(0),
		Portfolio:   c.str(1),
		Symbol:      c.str(3),
		Sector:      c.str(4),
		Industry:    c.str(5),
		HasDividend: c.boolean(6),
		Price:       c.dec(7),
		Commission:  c.dec(8),
		Tax:         c.dec(9),
		Amount:      c.dec(10),
		TotalAmount: c.dec(11),
		Shares:      c.dec(12),
		Status:      c.str(13),
		Note:        c.str(14),
	}
	if c.err == nil {
		typ, err := tradelog.ParseTxType(c.str(2))
		c.fail(2, err)
		r.Type = typ
	}
	return r, c.err
}

// EncodePosition returns the asset log row of p. Unknown market values are empty cells.
func EncodePosition(p tradelog.PositionSnapshot) []any {
	return []any{
		p.Date.String(), p.IsMarketOpen, p.Port, p.ProductName, p.Sector, p.Industry,
		p.Share.String(), p.AmountUSD.String(), p.TotalAmountUSD.String(),
		optString(p.ClosingPrice), optString(p.Valuation), optString(p.Performance), optString(p.TotalPerformance),
	}
}

// DecodePosition reads an asset log row.
func DecodePosition(row []any) (tradelog.PositionSnapshot, error) {
	c := cells{row: row, header: AssetHeader}
	p := tradelog.PositionSnapshot{
		Date:         c.date(0),
		IsMarketOpen: c.boolean(1),
		Key: tradelog.Key{
			Port:        c.str(2),
			ProductName: c.str(3),
			Sector:      c.str(4),
			Industry:    c.str(5),
		},
		Share:            c.dec(6),
		AmountUSD:        c.dec(7),
		TotalAmountUSD:   c.dec(8),
		ClosingPrice:     c.optDec(9),
		Valuation:        c.optDec(10),
		Performance:      c.optDec(11),
		TotalPerformance: c.optDec(12),
	}
	return p, c.err
}

func optString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// cells reads the typed cells of a row and keeps the first error.
//
// Sheets omits trailing empty cells, so missing cells read as empty.
type cells struct {
	row    []any
	header []any
	err    error
}

func (c *cells) fail(i int, err error) {
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("column %q: %w", c.header[i], err)
	}
}

func (c *cells) str(i int) string {
	if i >= len(c.row) {
		return ""
	}
	return cellString(c.row[i])
}

// sheetsEpoch is the day 0 of spreadsheet date serial numbers.
var sheetsEpoch = tradelog.NewDate(1899, 12, 30)

func (c *cells) date(i int) tradelog.Date {
	if i < len(c.row) {
		if serial, ok := c.row[i].(float64); ok {
			return sheetsEpoch.Add(int(serial))
		}
	}
	d, err := tradelog.ParseDate(c.str(i))
	c.fail(i, err)
	return d
}

func (c *cells) boolean(i int) bool {
	if i < len(c.row) {
		if b, ok := c.row[i].(bool); ok {
			return b
		}
	}
	s := c.str(i)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	c.fail(i, err)
	return b
}

func (c *cells) dec(i int) decimal.Decimal {
	if d := c.optDec(i); d != nil {
		return *d
	}
	return decimal.Zero
}

// optDec returns nil for an empty cell.
func (c *cells) optDec(i int) *decimal.Decimal {
	if i < len(c.row) {
		if f, ok := c.row[i].(float64); ok {
			d := decimal.NewFromFloat(f)
			return &d
		}
	}
	s := strings.NewReplacer(",", "", "$", "", " ", "").Replace(c.str(i))
	if s == "" || s == "-" {
		return nil
	}
	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		c.fail(i, err)
		return nil
	}
	if percent {
		d = d.Shift(-2)
	}
	return &d
}

// cellString formats a cell value as returned by the API.
func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(v)
}
