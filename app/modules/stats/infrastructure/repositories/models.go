package statsdb

import "github.com/uptrace/bun"

// Stat is one user's accumulated gameplay counters for a calendar month.
// Rows are keyed by (user_id, month, year); submissions add onto the
// existing row rather than replacing it.
type Stat struct {
	bun.BaseModel `bun:"table:stats,alias:s"`

	ID     int64 `bun:"id,pk,autoincrement" json:"id"`
	UserID int64 `bun:"user_id,notnull" json:"user_id"`
	Month  int   `bun:"month,notnull" json:"month"`
	Year   int   `bun:"year,notnull" json:"year"`

	CrashTotal   int `bun:"crash_total,notnull,default:0" json:"crash_total"`
	CrashRegular int `bun:"crash_regular,notnull,default:0" json:"crash_regular"`
	CrashEye     int `bun:"crash_eye,notnull,default:0" json:"crash_eye"`
	CrashGhost   int `bun:"crash_ghost,notnull,default:0" json:"crash_ghost"`
	CrashSticky  int `bun:"crash_sticky,notnull,default:0" json:"crash_sticky"`

	DistanceGrounded  float64 `bun:"distance_grounded,notnull,default:0" json:"distance_grounded"`
	DistanceInAir     float64 `bun:"distance_in_air,notnull,default:0" json:"distance_in_air"`
	DistanceRagdoll   float64 `bun:"distance_ragdoll,notnull,default:0" json:"distance_ragdoll"`
	DistanceBraking   float64 `bun:"distance_braking,notnull,default:0" json:"distance_braking"`
	DistanceArmsUp    float64 `bun:"distance_arms_up,notnull,default:0" json:"distance_arms_up"`
	DistanceOnRegular float64 `bun:"distance_on_regular,notnull,default:0" json:"distance_on_regular"`
	DistanceOnGrass   float64 `bun:"distance_on_grass,notnull,default:0" json:"distance_on_grass"`
	DistanceOnIce     float64 `bun:"distance_on_ice,notnull,default:0" json:"distance_on_ice"`

	TimeGrounded  float64 `bun:"time_grounded,notnull,default:0" json:"time_grounded"`
	TimeInAir     float64 `bun:"time_in_air,notnull,default:0" json:"time_in_air"`
	TimeRagdoll   float64 `bun:"time_ragdoll,notnull,default:0" json:"time_ragdoll"`
	TimeBraking   float64 `bun:"time_braking,notnull,default:0" json:"time_braking"`
	TimeArmsUp    float64 `bun:"time_arms_up,notnull,default:0" json:"time_arms_up"`
	TimeOnRegular float64 `bun:"time_on_regular,notnull,default:0" json:"time_on_regular"`
	TimeOnGrass   float64 `bun:"time_on_grass,notnull,default:0" json:"time_on_grass"`
	TimeOnIce     float64 `bun:"time_on_ice,notnull,default:0" json:"time_on_ice"`

	TimesStarted       int `bun:"times_started,notnull,default:0" json:"times_started"`
	TimesFinished      int `bun:"times_finished,notnull,default:0" json:"times_finished"`
	WheelsBroken       int `bun:"wheels_broken,notnull,default:0" json:"wheels_broken"`
	CheckpointsCrossed int `bun:"checkpoints_crossed,notnull,default:0" json:"checkpoints_crossed"`
}
