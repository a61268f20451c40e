package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/product"
)

// Sentinel errors for order placement validation.
var (
	ErrEmptyItems       = fmt.Errorf("order items required")
	ErrMissingAddress   = fmt.Errorf("shipping address required")
	ErrMissingPayment   = fmt.Errorf("payment method required")
	ErrPricingMismatch  = fmt.Errorf("submitted prices do not match computed prices")
	ErrNotOwner         = fmt.Errorf("order belongs to another user")
	ErrAlreadyPaid      = fmt.Errorf("order is already paid")
	ErrAlreadyDelivered = fmt.Errorf("order is already delivered")
)

// ProductNotFoundError indicates a submitted line references a product that
// no longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// PlaceOrderRequest is the validated input for placing an order. Pricing
// fields are the client's view of the totals; the service recomputes them
// and rejects the submission when they disagree.
type PlaceOrderRequest struct {
	Items           []cart.LineItem
	ShippingAddress cart.Address
	PaymentMethod   cart.PaymentMethod
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
	GrandTotal      decimal.Decimal
	// IdempotencyKey deduplicates double submissions. When empty the service
	// generates one, preserving legacy-client behaviour at the cost of the
	// guarantee.
	IdempotencyKey string
}

// Service encapsulates order placement and retrieval business logic.
type Service struct {
	products product.Repository
	orders   Repository
	carts    *cart.Store
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository, carts *cart.Store) *Service {
	return &Service{
		products: products,
		orders:   orders,
		carts:    carts,
		now:      time.Now,
	}
}

// PlaceOrder validates the submission, verifies every product still exists,
// recomputes the pricing breakdown, persists the order with its line-item
// snapshot, and clears the user's cart. On any failure the cart is left
// untouched so the user can retry.
//
// Replaying an idempotency key returns the originally created order without
// creating a second one.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if !req.ShippingAddress.Complete() {
		return nil, ErrMissingAddress
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrMissingPayment
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch so the whole submission is checked against one catalog read.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	known := make(map[string]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}
	for _, item := range req.Items {
		if _, ok := known[item.ProductID]; !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	// The client's totals are advisory; the server's arithmetic is the
	// contract. A disagreement is a validation failure, not a correction.
	breakdown := cart.Price(req.Items)
	if !breakdown.Subtotal.Equal(req.Subtotal) ||
		!breakdown.ShippingFee.Equal(req.ShippingFee) ||
		!breakdown.Tax.Equal(req.Tax) ||
		!breakdown.GrandTotal.Equal(req.GrandTotal) {
		return nil, ErrPricingMismatch
	}

	items := make([]Item, len(req.Items))
	for i, line := range req.Items {
		items[i] = Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        breakdown.Subtotal,
		ShippingFee:     breakdown.ShippingFee,
		Tax:             breakdown.Tax,
		GrandTotal:      breakdown.GrandTotal,
		CreatedAt:       s.now(),
	}

	created, err := s.orders.Create(ctx, o, key)
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) && created != nil {
			return created, nil
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The cart is cleared only after the order row exists. A failed clear is
	// logged by the caller but does not undo the order.
	if err := s.carts.Clear(ctx, userID); err != nil {
		return created, fmt.Errorf("clear cart after order %s: %w", created.ID, err)
	}

	return created, nil
}

// Get returns the order with the given ID when it is owned by userID or the
// caller is an admin.
func (s *Service) Get(ctx context.Context, id, userID string, isAdmin bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrNotOwner
	}
	return o, nil
}

// ListMine returns all orders owned by userID, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order. Admin only; the handler enforces the role.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// MarkPaid transitions an order to paid.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, ErrAlreadyPaid
	}
	at := s.now()
	if err := s.orders.MarkPaid(ctx, id, at); err != nil {
		return nil, err
	}
	o.IsPaid = true
	o.PaidAt = &at
	return o, nil
}

// MarkDelivered transitions an order to delivered.
func (s *Service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsDelivered {
		return nil, ErrAlreadyDelivered
	}
	at := s.now()
	if err := s.orders.MarkDelivered(ctx, id, at); err != nil {
		return nil, err
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	return o, nil
}
