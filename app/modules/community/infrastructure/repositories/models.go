package communitydb

import (
	"time"

	"github.com/uptrace/bun"
)

// Favorite marks a level a user saved. One row per (user, level).
type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	LevelID     int64     `bun:"level_id,notnull" json:"level_id"`
	DateCreated time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}

// Upvote is a user's endorsement of a level. One row per (user, level).
type Upvote struct {
	bun.BaseModel `bun:"table:upvotes,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	LevelID     int64     `bun:"level_id,notnull" json:"level_id"`
	DateCreated time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}

// Vote is a scored level rating.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:v"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	LevelID     int64     `bun:"level_id,notnull" json:"level_id"`
	Score       int       `bun:"score,notnull" json:"score"`
	DateCreated time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}

// VoteRow is a vote joined to its user, flattened for the listing query.
type VoteRow struct {
	ID            int64     `bun:"id" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	UserSteamID   string    `bun:"user_steam_id" json:"user_steam_id"`
	UserSteamName string    `bun:"user_steam_name" json:"user_steam_name"`
	LevelID       int64     `bun:"level_id" json:"level_id"`
	Score         int       `bun:"score" json:"score"`
	DateCreated   time.Time `bun:"date_created" json:"date_created"`
}

// VoteFilter narrows and pages the vote listing. Nil / empty fields are
// ignored.
type VoteFilter struct {
	UserID  *int64
	SteamID string
	LevelID *int64
	Offset  int
	Limit   int
}
