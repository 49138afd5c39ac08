package recorddb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// OutboxDBImpl is the bun-backed outbox repository.
type OutboxDBImpl struct {
	DB *bun.DB
}

// ClaimPending returns events whose available_at has passed, oldest first.
func (db *OutboxDBImpl) ClaimPending(ctx context.Context, before time.Time, limit int) ([]*OutboxEvent, error) {
	var events []*OutboxEvent
	err := db.DB.NewSelect().
		Model(&events).
		Where("available_at <= ?", before).
		Order("id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending outbox events: %w", err)
	}
	return events, nil
}

// Delete removes acknowledged events.
func (db *OutboxDBImpl) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.DB.NewDelete().
		Model((*OutboxEvent)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete outbox events: %w", err)
	}
	return nil
}

// Reschedule pushes the event into the future, bumps the attempt counter, and
// records the publish error.
func (db *OutboxDBImpl) Reschedule(ctx context.Context, id int64, next time.Time, lastErr string) error {
	_, err := db.DB.NewUpdate().
		Model((*OutboxEvent)(nil)).
		Set("attempts = attempts + 1").
		Set("last_error = ?", lastErr).
		Set("available_at = ?", next).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reschedule outbox event %d: %w", id, err)
	}
	return nil
}

var _ OutboxRepository = (*OutboxDBImpl)(nil)
