package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hollowbeak/storefront/internal/outbox"
)

const (
	getUnprocessedEventsSQL = `SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	markEventProcessedSQL = `UPDATE outbox_events SET processed_at = $2 WHERE id = $1`
)

var _ outbox.Store = (*OutboxRepository)(nil)

// OutboxRepository implements outbox.Store backed by PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository returns an OutboxRepository that uses the given pool.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// GetUnprocessed returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnprocessed(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := r.pool.Query(ctx, getUnprocessedEventsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching outbox events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (outbox.Event, error) {
		var e outbox.Event
		err := row.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt)
		return e, err
	})
}

// MarkProcessed stamps an event as published.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, markEventProcessedSQL, id, time.Now()); err != nil {
		return fmt.Errorf("marking outbox event %d processed: %w", id, err)
	}
	return nil
}
