package statsservice

import (
	"context"

	"github.com/raceline-gg/raceline-backend/internal/results"
)

// SubmitStatsInput carries one batch of gameplay counters from the game
// client. Values are deltas since the client's last submission.
type SubmitStatsInput struct {
	CallerID int64

	CrashTotal   int
	CrashRegular int
	CrashEye     int
	CrashGhost   int
	CrashSticky  int

	DistanceGrounded  float64
	DistanceInAir     float64
	DistanceRagdoll   float64
	DistanceBraking   float64
	DistanceArmsUp    float64
	DistanceOnRegular float64
	DistanceOnGrass   float64
	DistanceOnIce     float64

	TimeGrounded  float64
	TimeInAir     float64
	TimeRagdoll   float64
	TimeBraking   float64
	TimeArmsUp    float64
	TimeOnRegular float64
	TimeOnGrass   float64
	TimeOnIce     float64

	TimesStarted       int
	TimesFinished      int
	WheelsBroken       int
	CheckpointsCrossed int
}

// StatsAccepted is the success payload.
type StatsAccepted struct{}

// StatsRejected is the failure payload.
type StatsRejected struct {
	Reason  results.FailureKind `json:"reason"`
	Message string              `json:"message"`
}

// StatsOperationResult is the discriminated outcome of a stats submission.
type StatsOperationResult = results.OperationResult[StatsAccepted, StatsRejected]

// Service accumulates gameplay stats.
type Service interface {
	SubmitStats(ctx context.Context, input SubmitStatsInput) (StatsOperationResult, error)
}

// UserDirectory reports whether a user row exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}
