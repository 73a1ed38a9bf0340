package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PricingInput carries the resolved inputs of one pricing run.
type PricingInput struct {
	BasePrice                 decimal.Decimal
	BaseDiscountPercent       decimal.Decimal
	AgentDiscountPercent      decimal.Decimal
	AdditionalDiscountPercent decimal.Decimal
	AdditionalCharges         decimal.Decimal
}

// ComputeBreakdown runs the pricing formula. All three discounts apply to
// the original base price, never to intermediate results:
//
//	subtotal    = base - base*b/100 - base*a/100 - base*d/100
//	final_price = subtotal + additional_charges
//
// Amounts round half-even to two decimal places. Percentages outside
// [0, 100] and combined percentages above 100 are rejected.
func ComputeBreakdown(in PricingInput) (Breakdown, error) {
	for _, p := range []decimal.Decimal{in.BaseDiscountPercent, in.AgentDiscountPercent, in.AdditionalDiscountPercent} {
		if p.IsNegative() || p.GreaterThan(hundred) {
			return Breakdown{}, ErrInvalidPercent
		}
	}
	if in.AdditionalCharges.IsNegative() {
		return Breakdown{}, ErrInvalidCharges
	}
	combined := in.BaseDiscountPercent.Add(in.AgentDiscountPercent).Add(in.AdditionalDiscountPercent)
	if combined.GreaterThan(hundred) {
		return Breakdown{}, ErrDiscountExceedsBase
	}

	base := in.BasePrice.RoundBank(2)
	baseAmount := base.Mul(in.BaseDiscountPercent).Div(hundred).RoundBank(2)
	agentAmount := base.Mul(in.AgentDiscountPercent).Div(hundred).RoundBank(2)
	additionalAmount := base.Mul(in.AdditionalDiscountPercent).Div(hundred).RoundBank(2)

	subtotal := base.Sub(baseAmount).Sub(agentAmount).Sub(additionalAmount).RoundBank(2)
	charges := in.AdditionalCharges.RoundBank(2)
	final := subtotal.Add(charges).RoundBank(2)

	return Breakdown{
		BasePrice:                 base,
		BaseDiscountPercent:       in.BaseDiscountPercent,
		AgentDiscountPercent:      in.AgentDiscountPercent,
		AdditionalDiscountPercent: in.AdditionalDiscountPercent,
		BaseDiscountAmount:        baseAmount,
		AgentDiscountAmount:       agentAmount,
		AdditionalDiscountAmount:  additionalAmount,
		AdditionalCharges:         charges,
		Subtotal:                  subtotal,
		FinalPrice:                final,
	}, nil
}
