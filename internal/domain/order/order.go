package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/hollowbeak/storefront/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Item is an immutable snapshot of one cart line at placement time. Later
// changes to the product's price or stock never alter a placed order.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed order: the cart snapshot plus the computed pricing and
// fulfilment flags. Created once, never rewritten except for the paid and
// delivered transitions.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	ShippingAddress cart.Address
	PaymentMethod   cart.PaymentMethod
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
	GrandTotal      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists a new order together with its idempotency key and an
	// order-placed outbox event, atomically. When the key was already used it
	// returns the previously created order and ErrDuplicateSubmission.
	Create(ctx context.Context, o *Order, idempotencyKey string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

// ErrDuplicateSubmission signals that an idempotency key has already created
// an order. Callers treat it as success and return the original order.
var ErrDuplicateSubmission = errors.New("duplicate order submission")
