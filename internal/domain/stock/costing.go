package stock

import (
	"github.com/shopspring/decimal"
)

// costPrecision is the fractional digit count for unit costs
const costPrecision = 4

// WeightedAverage blends the current average cost with an inbound batch:
// (oldQty*oldCost + inQty*inCost) / (oldQty + inQty). When the combined
// quantity is not positive the old cost is returned unchanged. Only inbound
// events change the average; outbound events consume at the current average.
func WeightedAverage(oldQty, oldCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	total := oldQty.Add(inQty)
	if !total.IsPositive() {
		return oldCost
	}
	oldValue := oldQty.Mul(oldCost)
	inValue := inQty.Mul(inCost)
	return oldValue.Add(inValue).DivRound(total, costPrecision)
}

// WithTax applies a percentage markup to a base value:
// base * (1 + rate/100). The rate comes from the material's configured tax
// rate or the configured fallback; it is never a per-call constant.
func WithTax(base, taxRatePercent decimal.Decimal) decimal.Decimal {
	if taxRatePercent.IsZero() {
		return base
	}
	factor := decimal.NewFromInt(1).Add(taxRatePercent.Div(decimal.NewFromInt(100)))
	return base.Mul(factor).Round(costPrecision)
}
