package userdb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a player identity resolved from the game's Steam login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	SteamID     string    `bun:"steam_id,unique,notnull" json:"steam_id"`
	SteamName   string    `bun:"steam_name" json:"steam_name"`
	DiscordID   *string   `bun:"discord_id,nullzero" json:"discord_id,omitempty"`
	Banned      bool      `bun:"banned,notnull,default:false" json:"banned"`
	DateCreated time.Time `bun:"date_created,notnull,default:current_timestamp" json:"date_created"`
}
