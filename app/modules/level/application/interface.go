package levelservice

import (
	"context"

	"github.com/raceline-gg/raceline-backend/internal/results"
)

// CreateOrGetLevelInput carries a level submission from the game client.
// Thumbnail is the base64-encoded screenshot payload; it may be empty.
type CreateOrGetLevelInput struct {
	UID        string
	WID        string
	Name       string
	Author     string
	TimeAuthor float64
	TimeGold   float64
	TimeSilver float64
	TimeBronze float64
	Thumbnail  string
	CallerID   int64
	IsValid    bool
}

// LevelResolved is the success payload: the id every concurrent caller for
// the same UID observes.
type LevelResolved struct {
	LevelID int64  `json:"level_id"`
	UID     string `json:"uid"`
	Created bool   `json:"created"`
}

// LevelFailed is the failure payload.
type LevelFailed struct {
	UID     string              `json:"uid"`
	Reason  results.FailureKind `json:"reason"`
	Message string              `json:"message"`
}

// LevelOperationResult is the discriminated outcome of level ingestion.
type LevelOperationResult = results.OperationResult[LevelResolved, LevelFailed]

// Service is the level ingestion service.
type Service interface {
	CreateOrGetLevel(ctx context.Context, input CreateOrGetLevelInput) (LevelOperationResult, error)
}

// UserGate is the ban-check collaborator owned by the user module.
type UserGate interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}
