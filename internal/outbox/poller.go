package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller periodically drains unprocessed outbox rows and publishes them.
// Publishing and marking are not atomic: a crash between the two re-delivers
// the event on the next tick, so consumers must tolerate duplicates.
type Poller struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	lg        *zap.Logger
}

// NewPoller creates a Poller draining up to batchSize events every interval.
func NewPoller(store Store, publisher Publisher, interval time.Duration, batchSize int, lg *zap.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Poller{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		lg:        lg,
	}
}

// Run drains the outbox until ctx is cancelled. It blocks; run it in its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// drain publishes one batch. A failed publish leaves the row unprocessed for
// the next tick; a failed mark is logged and retried the same way.
func (p *Poller) drain(ctx context.Context) {
	events, err := p.store.GetUnprocessed(ctx, p.batchSize)
	if err != nil {
		p.lg.Error("Fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publisher.Publish(ctx, event); err != nil {
			p.lg.Error("Publish outbox event",
				zap.Int64("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := p.store.MarkProcessed(ctx, event.ID); err != nil {
			p.lg.Error("Mark outbox event processed",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
		}
	}
}
