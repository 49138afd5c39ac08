package recorddb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Record is one timed run for a level by a user. Splits are stored as the
// '|'-joined decimal string the game submitted; IsBest and IsWR are owned by
// the downstream personal-best and world-record processors.
type Record struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	LevelID       int64     `bun:"level_id,notnull" json:"level_id"`
	UserID        int64     `bun:"user_id,notnull" json:"user_id"`
	Time          float64   `bun:"time,notnull" json:"time"`
	Splits        string    `bun:"splits,notnull" json:"splits"`
	IsValid       bool      `bun:"is_valid,notnull,default:false" json:"is_valid"`
	IsBest        bool      `bun:"is_best,notnull,default:false" json:"is_best"`
	IsWR          bool      `bun:"is_wr,notnull,default:false" json:"is_wr"`
	GameVersion   string    `bun:"game_version" json:"game_version"`
	ModVersion    string    `bun:"mod_version" json:"mod_version"`
	GhostURL      *string   `bun:"ghost_url,nullzero" json:"ghost_url,omitempty"`
	ScreenshotURL *string   `bun:"screenshot_url,nullzero" json:"screenshot_url,omitempty"`
	DateCreated   time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}

// OutboxEvent is a pending downstream event, written in the same transaction
// as the record it belongs to. The relay publishes pending rows and deletes
// them once the broker acknowledged the publish.
type OutboxEvent struct {
	bun.BaseModel `bun:"table:record_outbox,alias:o"`

	ID          int64           `bun:"id,pk,autoincrement"`
	Topic       string          `bun:"topic,notnull"`
	Payload     json.RawMessage `bun:"payload,type:jsonb,notnull"`
	Attempts    int             `bun:"attempts,notnull,default:0"`
	LastError   *string         `bun:"last_error,nullzero"`
	AvailableAt time.Time       `bun:"available_at,notnull,default:current_timestamp"`
	DateCreated time.Time       `bun:"date_created,notnull,default:current_timestamp"`
}
