// Package recordoutbox drains the record outbox: pending events are
// published to the event bus and deleted once acknowledged, so a record
// commit cannot silently lose its downstream events.
package recordoutbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/eventbus"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
	defaultRetryBackoff = 30 * time.Second
)

// Relay polls the outbox table and publishes pending events.
type Relay struct {
	repo    recorddb.OutboxRepository
	bus     eventbus.EventBus
	logger  *slog.Logger
	metrics *metrics.Metrics

	pollInterval time.Duration
	batchSize    int
	retryBackoff time.Duration

	// now is swapped out by tests.
	now func() time.Time
}

// NewRelay creates a relay with the default poll cadence.
func NewRelay(repo recorddb.OutboxRepository, bus eventbus.EventBus, logger *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		repo:         repo,
		bus:          bus,
		logger:       logger,
		metrics:      m,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		retryBackoff: defaultRetryBackoff,
		now:          time.Now,
	}
}

// Run polls until the context is cancelled. Each tick drains at most one
// batch; a failed publish reschedules the event instead of blocking the rest
// of the batch.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "Outbox relay started",
		attr.Duration("poll_interval", r.pollInterval),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Outbox relay stopped")
			return
		case <-ticker.C:
			r.Drain(ctx)
		}
	}
}

// Drain claims one batch of pending events and publishes them.
func (r *Relay) Drain(ctx context.Context) {
	events, err := r.repo.ClaimPending(ctx, r.now(), r.batchSize)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to claim pending outbox events", attr.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	published := make([]int64, 0, len(events))
	for _, event := range events {
		if err := r.bus.Publish(ctx, event.Topic, json.RawMessage(event.Payload)); err != nil {
			r.logger.ErrorContext(ctx, "Failed to publish outbox event",
				attr.Int64("event_id", event.ID),
				attr.String("topic", event.Topic),
				attr.Int("attempts", event.Attempts+1),
				attr.Error(err),
			)
			r.metrics.OutboxEvents.WithLabelValues("failed").Inc()
			if err := r.repo.Reschedule(ctx, event.ID, r.now().Add(r.retryBackoff), err.Error()); err != nil {
				r.logger.ErrorContext(ctx, "Failed to reschedule outbox event",
					attr.Int64("event_id", event.ID),
					attr.Error(err),
				)
			}
			continue
		}
		published = append(published, event.ID)
		r.metrics.OutboxEvents.WithLabelValues("published").Inc()
	}

	if len(published) > 0 {
		if err := r.repo.Delete(ctx, published); err != nil {
			// Deletion failure means these events will be published again on
			// the next pass. Delivery is at-least-once either way.
			r.logger.ErrorContext(ctx, "Failed to delete acknowledged outbox events", attr.Error(err))
		}
	}
}
