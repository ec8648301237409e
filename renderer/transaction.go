package renderer

import (
	"fmt"

	"github.com/etnz/tradelog"
)

// Transaction renders a stock transaction to a sentence.
func Transaction(tx tradelog.Transaction) string {
	amount := tradelog.USD(tx.GrossAmount)
	switch tx.Type {
	case tradelog.Buy:
		return fmt.Sprintf("Bought %s of %s at %s for %s", tx.Shares, tx.Symbol, tradelog.USD(tx.Price), amount)
	case tradelog.Sell:
		return fmt.Sprintf("Sold %s of %s at %s for %s", tx.Shares, tx.Symbol, tradelog.USD(tx.Price), amount)
	case tradelog.Dividend:
		return fmt.Sprintf("Dividend of %s for %s", amount, tx.Symbol)
	default:
		return fmt.Sprintf("%s %s %s", tx.Type, tx.Symbol, amount)
	}
}

// OptionTransaction renders an option transaction to a sentence.
func OptionTransaction(tx tradelog.OptionTransaction) string {
	contract := fmt.Sprintf("%s %s %s %s", tx.Underlying, tx.Expiry, tx.Right, tx.Strike)
	amount := tradelog.USD(tx.GrossAmount)
	switch tx.Type {
	case tradelog.Buy:
		return fmt.Sprintf("Bought %s contracts of %s at %s for %s", tx.Contracts, contract, tradelog.USD(tx.Price), amount)
	case tradelog.Sell:
		return fmt.Sprintf("Sold %s contracts of %s at %s for %s", tx.Contracts, contract, tradelog.USD(tx.Price), amount)
	default:
		return fmt.Sprintf("%s %s %s", tx.Type, contract, amount)
	}
}
