package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBreakdownAdditiveNotCompounding(t *testing.T) {
	// 100 with three 10% discounts yields 70, not 100*0.9^3.
	b, err := ComputeBreakdown(PricingInput{
		BasePrice:                 dec("100"),
		BaseDiscountPercent:       dec("10"),
		AgentDiscountPercent:      dec("10"),
		AdditionalDiscountPercent: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, b.BaseDiscountAmount.Equal(dec("10.00")), "base amount: %s", b.BaseDiscountAmount)
	assert.True(t, b.AgentDiscountAmount.Equal(dec("10.00")))
	assert.True(t, b.AdditionalDiscountAmount.Equal(dec("10.00")))
	assert.True(t, b.Subtotal.Equal(dec("70.00")), "subtotal: %s", b.Subtotal)
	assert.True(t, b.FinalPrice.Equal(dec("70.00")))
}

func TestComputeBreakdownScenarioOne(t *testing.T) {
	// base 50, agent 5%, base discount 10% -> 50 - 5 - 2.5 = 42.5
	b, err := ComputeBreakdown(PricingInput{
		BasePrice:            dec("50"),
		BaseDiscountPercent:  dec("10"),
		AgentDiscountPercent: dec("5"),
	})
	require.NoError(t, err)
	assert.True(t, b.BaseDiscountAmount.Equal(dec("5.00")))
	assert.True(t, b.AgentDiscountAmount.Equal(dec("2.50")))
	assert.True(t, b.Subtotal.Equal(dec("42.50")), "subtotal: %s", b.Subtotal)
	assert.True(t, b.FinalPrice.Equal(dec("42.50")))
}

func TestComputeBreakdownScenarioTwoWithCharges(t *testing.T) {
	b, err := ComputeBreakdown(PricingInput{
		BasePrice:            dec("50"),
		BaseDiscountPercent:  dec("10"),
		AgentDiscountPercent: dec("5"),
		AdditionalCharges:    dec("7.5"),
	})
	require.NoError(t, err)
	assert.True(t, b.Subtotal.Equal(dec("42.50")))
	assert.True(t, b.FinalPrice.Equal(dec("50.00")), "final: %s", b.FinalPrice)
}

func TestComputeBreakdownIdempotent(t *testing.T) {
	in := PricingInput{
		BasePrice:                 dec("123.45"),
		BaseDiscountPercent:       dec("7.5"),
		AgentDiscountPercent:      dec("2.25"),
		AdditionalDiscountPercent: dec("1"),
		AdditionalCharges:         dec("9.99"),
	}
	first, err := ComputeBreakdown(in)
	require.NoError(t, err)
	second, err := ComputeBreakdown(in)
	require.NoError(t, err)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.FinalPrice.Equal(second.FinalPrice))
	assert.True(t, first.BaseDiscountAmount.Equal(second.BaseDiscountAmount))
}

func TestComputeBreakdownRoundsHalfEven(t *testing.T) {
	// 10.125 rounds to 10.12 under banker's rounding.
	b, err := ComputeBreakdown(PricingInput{
		BasePrice:           dec("101.25"),
		BaseDiscountPercent: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, b.BaseDiscountAmount.Equal(dec("10.12")), "amount: %s", b.BaseDiscountAmount)
}

func TestComputeBreakdownRejectsOutOfRangePercent(t *testing.T) {
	_, err := ComputeBreakdown(PricingInput{
		BasePrice:           dec("100"),
		BaseDiscountPercent: dec("101"),
	})
	assert.ErrorIs(t, err, ErrInvalidPercent)

	_, err = ComputeBreakdown(PricingInput{
		BasePrice:            dec("100"),
		AgentDiscountPercent: dec("-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidPercent)
}

func TestComputeBreakdownRejectsCombinedAboveHundred(t *testing.T) {
	_, err := ComputeBreakdown(PricingInput{
		BasePrice:                 dec("100"),
		BaseDiscountPercent:       dec("50"),
		AgentDiscountPercent:      dec("40"),
		AdditionalDiscountPercent: dec("20"),
	})
	assert.ErrorIs(t, err, ErrDiscountExceedsBase)
}

func TestComputeBreakdownRejectsNegativeCharges(t *testing.T) {
	_, err := ComputeBreakdown(PricingInput{
		BasePrice:         dec("100"),
		AdditionalCharges: dec("-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidCharges)
}

func TestComputeBreakdownZeroBase(t *testing.T) {
	b, err := ComputeBreakdown(PricingInput{
		BasePrice:           dec("0"),
		BaseDiscountPercent: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.FinalPrice.IsZero())
}
