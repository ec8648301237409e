package tradelog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxType is the kind of a statement transaction.
type TxType string

// Transaction types. The values are the codes written in the ledger.
const (
	Buy      TxType = "BUY"
	Sell     TxType = "SEL"
	Dividend TxType = "DIV"
)

// ParseTxType reads a transaction type as printed on a statement or in the ledger.
//
// It is lenient: "Buy", "BUY", "BUYAAPL" are all Buy; "SELL" and "SEL" are Sell.
func ParseTxType(s string) (TxType, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(u, "BUY"):
		return Buy, nil
	case strings.HasPrefix(u, "SEL"):
		return Sell, nil
	case strings.HasPrefix(u, "DIV"):
		return Dividend, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

func (t TxType) String() string {
	switch t {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Dividend:
		return "DIVIDEND"
	}
	return string(t)
}

// Transaction is a stock transaction read from a statement.
type Transaction struct {
	Type           TxType
	Symbol         string
	Shares         decimal.Decimal
	Price          decimal.Decimal
	Commission     decimal.Decimal
	WithholdingTax decimal.Decimal
	GrossAmount    decimal.Decimal
}

// OptionTransaction is an option transaction read from a statement.
type OptionTransaction struct {
	Type TxType
	OptionSymbol
	Contracts      decimal.Decimal
	Price          decimal.Decimal
	Commission     decimal.Decimal
	WithholdingTax decimal.Decimal
	GrossAmount    decimal.Decimal
}

// StatementResult is the content of one statement.
type StatementResult struct {
	StatementDate      Date
	Transactions       []Transaction
	OptionTransactions []OptionTransaction
}

// IsEmpty reports whether the statement has no transaction at all.
func (r StatementResult) IsEmpty() bool {
	return len(r.Transactions) == 0 && len(r.OptionTransactions) == 0
}
