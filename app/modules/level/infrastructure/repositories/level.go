package leveldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrLevelNotFound = errors.New("level not found")

// LevelDBImpl is the bun-backed level repository.
type LevelDBImpl struct {
	DB *bun.DB
}

func (db *LevelDBImpl) GetByUID(ctx context.Context, uid string) (*Level, error) {
	level := &Level{}
	err := db.DB.NewSelect().
		Model(level).
		Where("uid = ?", uid).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch level %s: %w", uid, err)
	}
	return level, nil
}

// Create inserts the level within a transaction and returns the new id.
func (db *LevelDBImpl) Create(ctx context.Context, level *Level) (int64, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewInsert().
		Model(level).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create level %s: %w", level.UID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return level.ID, nil
}

func (db *LevelDBImpl) UpdateThumbnail(ctx context.Context, id int64, url string) error {
	result, err := db.DB.NewUpdate().
		Model((*Level)(nil)).
		Set("thumbnail_url = ?", url).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update thumbnail for level %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLevelNotFound
	}
	return nil
}

var _ Repository = (*LevelDBImpl)(nil)
