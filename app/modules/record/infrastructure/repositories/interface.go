package recorddb

import (
	"context"
	"time"
)

// Repository provides record persistence. FindDuplicate returns (nil, nil)
// when no candidate matches. Create inserts the record and the outbox events
// produced by the builder in one transaction, so a commit guarantees the
// downstream events will eventually be published.
type Repository interface {
	FindDuplicate(ctx context.Context, userID, levelID int64, time, tolerance float64, splits string) (*Record, error)
	Create(ctx context.Context, record *Record, events func(recordID int64) ([]*OutboxEvent, error)) (int64, error)
}

// OutboxRepository is the relay's view of the outbox table.
type OutboxRepository interface {
	// ClaimPending returns pending events that became available before the
	// given instant, oldest first.
	ClaimPending(ctx context.Context, before time.Time, limit int) ([]*OutboxEvent, error)
	// Delete removes acknowledged events.
	Delete(ctx context.Context, ids []int64) error
	// Reschedule pushes a failed event into the future and records the error.
	Reschedule(ctx context.Context, id int64, next time.Time, lastErr string) error
}
