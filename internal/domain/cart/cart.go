// Package cart holds the buyer's cart state: line items, shipping address
// and payment method. The state is mutated through a small set of operations
// and persisted in full after every mutation, so it survives process
// restarts the same way the session that created it does.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart mutations.
var (
	ErrIncompleteAddress    = errors.New("shipping address requires street, city, postal code and country")
	ErrNoShippingAddress    = errors.New("payment method requires a shipping address")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

// PaymentMethod enumerates the supported payment providers.
type PaymentMethod string

const (
	PaymentUPI    PaymentMethod = "UPI"
	PaymentPayPal PaymentMethod = "PayPal"
	PaymentStripe PaymentMethod = "Stripe"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentUPI, PaymentPayPal, PaymentStripe:
		return true
	}
	return false
}

// LineItem is a product reference plus quantity and a price snapshot taken
// when the item was added. StockSnapshot is the stock on hand at add-time
// and caps the quantity.
type LineItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	StockSnapshot int             `json:"stock_snapshot"`
}

// Address is a shipping destination. All four fields are required.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Complete reports whether every address field is populated.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// State is the full cart: line items in insertion order, plus the optional
// shipping address and payment method collected during checkout.
//
// Invariant: PaymentMethod is never set while ShippingAddress is nil.
type State struct {
	Items           []LineItem    `json:"items"`
	ShippingAddress *Address      `json:"shipping_address,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
}

// NewState returns an empty cart.
func NewState() *State {
	return &State{}
}

// AddOrUpdateItem inserts item, or replaces the quantity of an existing line
// with the same product ID. The quantity is clamped to [1, StockSnapshot]
// without error. Insertion order of distinct products is preserved.
func (s *State) AddOrUpdateItem(item LineItem) {
	item.Quantity = clampQuantity(item.Quantity, item.StockSnapshot)

	for i := range s.Items {
		if s.Items[i].ProductID == item.ProductID {
			s.Items[i] = item
			return
		}
	}
	s.Items = append(s.Items, item)
}

// RemoveItem removes the line with the given product ID. Removing an absent
// product is a no-op.
func (s *State) RemoveItem(productID string) {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return
		}
	}
}

// SetShippingAddress records the shipping destination. It rejects addresses
// with any empty field.
func (s *State) SetShippingAddress(addr Address) error {
	if !addr.Complete() {
		return ErrIncompleteAddress
	}
	s.ShippingAddress = &addr
	return nil
}

// SetPaymentMethod records the payment method. The shipping address must be
// set first.
func (s *State) SetPaymentMethod(method PaymentMethod) error {
	if s.ShippingAddress == nil || !s.ShippingAddress.Complete() {
		return ErrNoShippingAddress
	}
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	s.PaymentMethod = method
	return nil
}

// Clear resets the cart to its initial empty state. It is called exactly
// once per checkout, after a successful order submission.
func (s *State) Clear() {
	s.Items = nil
	s.ShippingAddress = nil
	s.PaymentMethod = ""
}

// ReadyForPayment reports whether the shipping step is complete.
func (s *State) ReadyForPayment() bool {
	return s.ShippingAddress != nil && s.ShippingAddress.Complete()
}

// ReadyForReview reports whether both shipping and payment steps are complete.
func (s *State) ReadyForReview() bool {
	return s.ReadyForPayment() && s.PaymentMethod.Valid()
}

func clampQuantity(qty, stock int) int {
	if qty < 1 {
		qty = 1
	}
	if stock >= 1 && qty > stock {
		qty = stock
	}
	return qty
}

// Repository persists full cart states keyed by user ID.
type Repository interface {
	// Get loads the cart for userID. A user with no stored cart gets a new
	// empty state, not an error.
	Get(ctx context.Context, userID string) (*State, error)
	// Set stores the full cart state for userID.
	Set(ctx context.Context, userID string, state *State) error
	// Delete removes the stored cart for userID.
	Delete(ctx context.Context, userID string) error
}
