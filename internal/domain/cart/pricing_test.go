package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestPrice_EmptyCart(t *testing.T) {
	b := Price(nil)

	assertDecimalEqual(t, "0", b.Subtotal)
	assertDecimalEqual(t, "10", b.ShippingFee, "empty cart still pays flat shipping")
	assertDecimalEqual(t, "0", b.Tax)
	assertDecimalEqual(t, "10", b.GrandTotal)
}

func TestPrice_BelowFreeShippingThreshold(t *testing.T) {
	b := Price([]LineItem{
		newTestItem("p1", 2, 10, "20.00"),
	})

	assertDecimalEqual(t, "40", b.Subtotal)
	assertDecimalEqual(t, "10", b.ShippingFee)
	assertDecimalEqual(t, "6", b.Tax)
	assertDecimalEqual(t, "56", b.GrandTotal)
}

func TestPrice_ExactlyAtThresholdStillPaysShipping(t *testing.T) {
	b := Price([]LineItem{
		newTestItem("p1", 1, 10, "100.00"),
	})

	assertDecimalEqual(t, "10", b.ShippingFee, "threshold comparison is strict")
}

func TestPrice_AboveThresholdShipsFree(t *testing.T) {
	b := Price([]LineItem{
		newTestItem("p1", 2, 10, "40.00"),
		newTestItem("p2", 1, 10, "30.00"),
	})

	assertDecimalEqual(t, "110", b.Subtotal)
	assertDecimalEqual(t, "0", b.ShippingFee)
	assertDecimalEqual(t, "16.5", b.Tax)
	assertDecimalEqual(t, "126.5", b.GrandTotal)
}

func TestPrice_TaxRoundsToTwoPlaces(t *testing.T) {
	// 0.33 * 0.15 = 0.0495, rounds half away from zero to 0.05.
	b := Price([]LineItem{
		newTestItem("p1", 1, 10, "0.33"),
	})

	assertDecimalEqual(t, "0.05", b.Tax)
	assertDecimalEqual(t, "10.38", b.GrandTotal)
}

func TestPrice_SubtotalKeepsFullPrecision(t *testing.T) {
	b := Price([]LineItem{
		newTestItem("p1", 3, 10, "0.333"),
	})

	assertDecimalEqual(t, "0.999", b.Subtotal)
}

func TestPrice_IsPureRecomputation(t *testing.T) {
	items := []LineItem{newTestItem("p1", 2, 10, "12.50")}

	first := Price(items)
	second := Price(items)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}
