package tradelog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Default values of the ledger record bookkeeping columns.
const (
	DefaultPortfolio = "Dime"
	StatusDone       = "Done"
	NoNote           = "-"
)

// StockMeta is the reference data attached to a symbol in the ledger.
type StockMeta struct {
	Sector      string
	Industry    string
	HasDividend bool
}

// LedgerRecord is one normalized row of the investment log.
//
// Amounts and shares are signed: sells are negative.
type LedgerRecord struct {
	Date        Date
	Portfolio   string
	Type        TxType
	Symbol      string
	Sector      string
	Industry    string
	HasDividend bool
	Price       decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Amount      decimal.Decimal
	TotalAmount decimal.Decimal
	Shares      decimal.Decimal
	Status      string
	Note        string
}

// Key returns the position identity of the record.
func (r LedgerRecord) Key() Key {
	return Key{Port: r.Portfolio, ProductName: r.Symbol, Sector: r.Sector, Industry: r.Industry}
}

// NewRecord formats a statement transaction into a ledger record.
//
// Buys and dividends keep their natural sign and their total is the amount plus
// fees. Sells have negative amount and shares, and their total is the negated
// amount net of fees.
func NewRecord(on Date, portfolio string, tx Transaction, meta StockMeta) LedgerRecord {
	return newRecord(on, portfolio, tx.Type, tx.Symbol, tx.Shares, tx.Price, tx.Commission, tx.WithholdingTax, tx.GrossAmount, meta)
}

// NewOptionRecord formats an option transaction into a ledger record.
// The product is the OCC symbol, the shares are the contracts and the meta
// data are the underlying's.
func NewOptionRecord(on Date, portfolio string, tx OptionTransaction, meta StockMeta) LedgerRecord {
	return newRecord(on, portfolio, tx.Type, tx.OptionSymbol.String(), tx.Contracts, tx.Price, tx.Commission, tx.WithholdingTax, tx.GrossAmount, meta)
}

func newRecord(on Date, portfolio string, typ TxType, symbol string, shares, price, commission, tax, amount decimal.Decimal, meta StockMeta) LedgerRecord {
	if portfolio == "" {
		portfolio = DefaultPortfolio
	}
	fees := commission.Add(tax)
	var total decimal.Decimal
	if typ != Sell {
		total = amount.Add(fees).RoundBank(2)
	} else {
		total = amount.Sub(fees).RoundBank(2).Neg()
		amount = amount.Neg()
		shares = shares.Neg()
	}
	return LedgerRecord{
		Date:        on,
		Portfolio:   portfolio,
		Type:        typ,
		Symbol:      strings.TrimSpace(symbol),
		Sector:      meta.Sector,
		Industry:    meta.Industry,
		HasDividend: meta.HasDividend,
		Price:       price,
		Commission:  commission,
		Tax:         tax,
		Amount:      amount,
		TotalAmount: total,
		Shares:      shares,
		Status:      StatusDone,
		Note:        NoNote,
	}
}

// MarshalJSON implements the json.Marshaler interface for LedgerRecord.
func (r LedgerRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("port", r.Portfolio)
	w.Append("type", r.Type)
	w.Append("symbol", r.Symbol)
	w.Optional("sector", r.Sector)
	w.Optional("industry", r.Industry)
	w.Optional("dividend", r.HasDividend)
	w.Append("price", r.Price)
	w.Append("commission", r.Commission)
	w.Append("tax", r.Tax)
	w.Append("amount", r.Amount)
	w.Append("total", r.TotalAmount)
	w.Append("shares", r.Shares)
	w.Optional("status", r.Status)
	w.Optional("note", r.Note)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for LedgerRecord.
func (r *LedgerRecord) UnmarshalJSON(data []byte) error {
	var temp struct {
		Date        Date            `json:"date"`
		Portfolio   string          `json:"port"`
		Type        TxType          `json:"type"`
		Symbol      string          `json:"symbol"`
		Sector      string          `json:"sector"`
		Industry    string          `json:"industry"`
		HasDividend bool            `json:"dividend"`
		Price       decimal.Decimal `json:"price"`
		Commission  decimal.Decimal `json:"commission"`
		Tax         decimal.Decimal `json:"tax"`
		Amount      decimal.Decimal `json:"amount"`
		TotalAmount decimal.Decimal `json:"total"`
		Shares      decimal.Decimal `json:"shares"`
		Status      string          `json:"status"`
		Note        string          `json:"note"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*r = LedgerRecord(temp)
	return nil
}

// SumTotal returns the sum of the records total amounts.
func SumTotal(records []LedgerRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.TotalAmount)
	}
	return sum
}
