package tradelog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent, used for display.
type Percent float64

// PercentOf returns the percent of a ratio, 0.0246 is 2.46%.
func PercentOf(ratio decimal.Decimal) Percent {
	return Percent(ratio.Shift(2).InexactFloat64())
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

// SignedString returns the percent with a sign. 0 is represented as a "-"
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
