package leveldb

import (
	"time"

	"github.com/uptrace/bun"
)

// Level is a playable track. UID is the stable identifier the game derives
// from the track content; at most one row ever exists per UID.
type Level struct {
	bun.BaseModel `bun:"table:levels,alias:l"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	UID          string    `bun:"uid,unique,notnull" json:"uid"`
	WID          string    `bun:"wid" json:"wid"`
	Name         string    `bun:"name,notnull" json:"name"`
	Author       string    `bun:"author,notnull" json:"author"`
	TimeAuthor   float64   `bun:"time_author,notnull" json:"time_author"`
	TimeGold     float64   `bun:"time_gold,notnull" json:"time_gold"`
	TimeSilver   float64   `bun:"time_silver,notnull" json:"time_silver"`
	TimeBronze   float64   `bun:"time_bronze,notnull" json:"time_bronze"`
	ThumbnailURL string    `bun:"thumbnail_url" json:"thumbnail_url"`
	IsValid      bool      `bun:"is_valid,notnull,default:false" json:"is_valid"`
	CreatedBy    int64     `bun:"created_by,notnull" json:"created_by"`
	// Points and Rank are derived scoring fields owned by the points
	// processor, never written here.
	Points      int       `bun:"points,notnull,default:0" json:"points"`
	Rank        int       `bun:"rank,notnull,default:0" json:"rank"`
	DateCreated time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}
