package popularityservice

import (
	"context"
	"time"
)

// LevelSummary is the level part of a popularity entry.
type LevelSummary struct {
	LevelID      int64  `json:"level_id"`
	UID          string `json:"uid"`
	Name         string `json:"name"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// WorldRecordSummary describes the current world record on a level, when one
// of the in-window best records carries the flag.
type WorldRecordSummary struct {
	RecordID int64   `json:"record_id"`
	UserID   int64   `json:"user_id"`
	Time     float64 `json:"time"`
}

// LevelPopularity is one ranked entry of the cached popularity view.
type LevelPopularity struct {
	Level       LevelSummary        `json:"level"`
	RecordCount int                 `json:"record_count"`
	WorldRecord *WorldRecordSummary `json:"world_record,omitempty"`
}

// JobSpec parameterizes one aggregation variant. Daily, weekly, and monthly
// runs share the algorithm and differ only in window, size, and cache key.
type JobSpec struct {
	Name        string
	WindowStart func(now time.Time) time.Time
	Limit       int
	CacheKey    string
}

// Service runs one popularity aggregation pass.
type Service interface {
	Run(ctx context.Context, spec JobSpec) error
}
