package recorddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// RecordDBImpl is the bun-backed record repository.
type RecordDBImpl struct {
	DB *bun.DB
}

// FindDuplicate looks up an existing record for the same (user, level) with
// a time inside the tolerance and an identical joined-splits string. The
// caller decides whether the candidate is recent enough to count.
func (db *RecordDBImpl) FindDuplicate(ctx context.Context, userID, levelID int64, time, tolerance float64, splits string) (*Record, error) {
	record := &Record{}
	err := db.DB.NewSelect().
		Model(record).
		Where("user_id = ?", userID).
		Where("level_id = ?", levelID).
		Where("abs(time - ?) < ?", time, tolerance).
		Where("splits = ?", splits).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search duplicate record for user %d level %d: %w", userID, levelID, err)
	}
	return record, nil
}

// Create inserts the record and its outbox events within one transaction and
// returns the new id. The events builder runs after the insert so it can see
// the generated id; a builder error aborts the whole transaction.
func (db *RecordDBImpl) Create(ctx context.Context, record *Record, events func(recordID int64) ([]*OutboxEvent, error)) (int64, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewInsert().
		Model(record).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create record for user %d level %d: %w", record.UserID, record.LevelID, err)
	}

	if events != nil {
		pending, err := events(record.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to build outbox events for record %d: %w", record.ID, err)
		}
		if len(pending) > 0 {
			if _, err := tx.NewInsert().Model(&pending).Exec(ctx); err != nil {
				return 0, fmt.Errorf("failed to enqueue outbox events for record %d: %w", record.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record.ID, nil
}

var _ Repository = (*RecordDBImpl)(nil)
