package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/order"
	"github.com/hollowbeak/storefront/internal/outbox"
)

const (
	orderColumns = `id, user_id, items, shipping_address, payment_method,
		subtotal, shipping_fee, tax, grand_total,
		is_paid, paid_at, is_delivered, delivered_at, created_at`

	insertOrderSQL = `INSERT INTO orders
		(id, user_id, items, shipping_address, payment_method,
		 subtotal, shipping_fee, tax, grand_total, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (idempotency_key) DO NOTHING`

	getOrderByKeySQL = `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	markOrderPaidSQL = `UPDATE orders SET is_paid = TRUE, paid_at = $2 WHERE id = $1`

	markOrderDeliveredSQL = `UPDATE orders SET is_delivered = TRUE, delivered_at = $2 WHERE id = $1`

	insertOutboxEventSQL = `INSERT INTO outbox_events (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and its order-placed outbox event in one
// transaction. Line items and the shipping address are serialized to JSON
// for the JSONB columns. A reused idempotency key inserts nothing; the
// original order is returned together with order.ErrDuplicateSubmission.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, idempotencyKey string) (*order.Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshaling shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, itemsJSON, addressJSON, string(o.PaymentMethod),
		o.Subtotal, o.ShippingFee, o.Tax, o.GrandTotal, idempotencyKey, o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if tag.RowsAffected() == 0 {
		// The key has been used before: surface the order it created.
		existing, err := r.getOne(ctx, getOrderByKeySQL, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("loading order for idempotency key: %w", err)
		}
		return existing, order.ErrDuplicateSubmission
	}

	payload, err := json.Marshal(outbox.OrderPlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		GrandTotal: o.GrandTotal,
		PlacedAt:   o.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling outbox payload: %w", err)
	}
	if _, err := tx.Exec(ctx, insertOutboxEventSQL, o.ID, outbox.EventOrderPlaced, payload); err != nil {
		return nil, fmt.Errorf("enqueueing outbox event for order %q: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order %q: %w", o.ID, err)
	}
	return o, nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := r.getOne(ctx, getOrderByIDSQL, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// ListByUser returns all orders owned by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// MarkPaid flags an order as paid at the given time.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, markOrderPaidSQL, id, at)
	if err != nil {
		return fmt.Errorf("marking order %q paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// MarkDelivered flags an order as delivered at the given time.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, markOrderDeliveredSQL, id, at)
	if err != nil {
		return fmt.Errorf("marking order %q delivered: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) getOne(ctx context.Context, sql string, arg any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		itemsJSON   []byte
		addressJSON []byte
		method      string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &addressJSON, &method,
		&o.Subtotal, &o.ShippingFee, &o.Tax, &o.GrandTotal,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	o.PaymentMethod = cart.PaymentMethod(method)
	return o, nil
}
