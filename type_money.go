package tradelog

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value, used for display.
//
// Computations are done on decimal.Decimal values, Money only knows how to
// format them with the currency conventions.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money for a value in a currency.
func M(value decimal.Decimal, currency string) Money {
	return Money{value: value, cur: currency}
}

// USD is a convenient factory for US dollars.
func USD(value decimal.Decimal) Money { return M(value, "USD") }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to the currency fraction.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.RoundBank(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
