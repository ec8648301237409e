package tradelog

import "github.com/shopspring/decimal"

var (
	commissionRate = decimal.RequireFromString("0.0015") // 0.15% of the gross amount
	vatRate        = decimal.RequireFromString("0.07")   // 7% of the commission
)

// Reconcile splits the broker's combined commission and tax figure into its
// commission and withholding tax parts.
//
// The commission is estimated from the gross amount, the tax from the
// commission. The broker's total is authoritative: whenever the estimate does
// not add up to it, the tax absorbs the difference.
func Reconcile(gross, combined decimal.Decimal) (commission, tax decimal.Decimal) {
	if combined.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	commission = gross.Mul(commissionRate).RoundBank(2)
	tax = commission.Mul(vatRate).RoundBank(2)
	if !commission.Add(tax).Equal(combined) {
		tax = combined.Sub(commission)
	}
	return commission, tax
}
