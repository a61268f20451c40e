// Package outbox publishes order events to Kafka through a transactional
// outbox. Order placement writes the event row in the same transaction as
// the order itself; a background poller drains unprocessed rows and hands
// them to the broker, so an order is never placed without its event and an
// event is never published for a rolled-back order.
package outbox

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventOrderPlaced is the event type written when an order is created.
const EventOrderPlaced = "order.placed"

// OrderPlacedEvent is the payload stored (and published) for a placed order.
type OrderPlacedEvent struct {
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// Event is one stored outbox row awaiting publication.
type Event struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Store provides access to unprocessed outbox rows.
type Store interface {
	GetUnprocessed(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// Publisher delivers a single event to the broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
