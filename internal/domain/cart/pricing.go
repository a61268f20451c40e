package cart

import "github.com/shopspring/decimal"

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingFee       = decimal.NewFromInt(10)
	taxRate               = decimal.RequireFromString("0.15")
)

// Breakdown is the derived pricing of a cart. It is recomputed on demand and
// never stored, so it cannot drift from the cart state it was computed from.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Tax         decimal.Decimal `json:"tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// Price computes the pricing breakdown for the given line items:
//
//	subtotal    = Σ unitPrice × quantity
//	shippingFee = 0 if subtotal > 100, else 10
//	tax         = round(subtotal × 0.15, 2)
//	grandTotal  = subtotal + shippingFee + tax
//
// An empty cart is charged the flat shipping fee: the free-shipping threshold
// is a strict subtotal comparison and zero items never reach it. That matches
// the storefront's historical behaviour and is kept deliberately rather than
// special-cased to zero.
//
// Tax and grand total are rounded to 2 decimal places (half away from zero);
// the subtotal carries full precision.
func Price(items []LineItem) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
	}

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate).Round(2)
	grand := subtotal.Add(shipping).Add(tax).Round(2)

	return Breakdown{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		GrandTotal:  grand,
	}
}
