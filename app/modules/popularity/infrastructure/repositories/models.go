package popularitydb

import "time"

// BestRecordRow is one best-flagged record joined to its level, flattened
// for the aggregation scan.
type BestRecordRow struct {
	RecordID     int64     `bun:"record_id"`
	RecordUserID int64     `bun:"record_user_id"`
	RecordTime   float64   `bun:"record_time"`
	IsWR         bool      `bun:"is_wr"`
	DateCreated  time.Time `bun:"date_created"`

	LevelID           int64  `bun:"level_id"`
	LevelUID          string `bun:"level_uid"`
	LevelName         string `bun:"level_name"`
	LevelAuthor       string `bun:"level_author"`
	LevelThumbnailURL string `bun:"level_thumbnail_url"`
}
