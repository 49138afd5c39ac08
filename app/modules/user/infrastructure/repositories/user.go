package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrUserNotFound = errors.New("user not found")

// UserDBImpl is the bun-backed user repository.
type UserDBImpl struct {
	DB *bun.DB
}

func (db *UserDBImpl) GetByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := db.DB.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return user, nil
}

func (db *UserDBImpl) IsBanned(ctx context.Context, id int64) (bool, error) {
	banned, err := db.DB.NewSelect().
		Model((*User)(nil)).
		Where("id = ? AND banned = TRUE", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check ban for user %d: %w", id, err)
	}
	return banned, nil
}

func (db *UserDBImpl) UpdateDiscordID(ctx context.Context, id int64, discordID string) error {
	result, err := db.DB.NewUpdate().
		Model((*User)(nil)).
		Set("discord_id = ?", discordID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update discord id for user %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

var _ Repository = (*UserDBImpl)(nil)
