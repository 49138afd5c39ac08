package userdb

import "context"

// Repository provides user lookups and updates.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	IsBanned(ctx context.Context, id int64) (bool, error)
	UpdateDiscordID(ctx context.Context, id int64, discordID string) error
}
