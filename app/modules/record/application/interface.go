package recordservice

import (
	"context"

	"github.com/raceline-gg/raceline-backend/internal/results"
)

// SubmitRecordInput carries one timed run from the game client.
type SubmitRecordInput struct {
	LevelID       int64
	ClaimedUserID int64
	CallerID      int64
	Time          float64
	Splits        []float64
	IsValid       bool
	GameVersion   string
	ModVersion    string
	// GhostData and ScreenshotData are opaque payloads forwarded to the
	// media processor, never stored here.
	GhostData      string
	ScreenshotData string
}

// RecordAccepted is the success payload. RecordID is zero when the level is
// deny-listed and the submission was acknowledged without being stored.
type RecordAccepted struct {
	RecordID int64 `json:"record_id"`
}

// RecordRejected is the failure payload. A duplicate reason is a non-fatal
// outcome: the earlier record stands and nothing was inserted.
type RecordRejected struct {
	LevelID int64               `json:"level_id"`
	Reason  results.FailureKind `json:"reason"`
	Message string              `json:"message"`
}

// RecordOperationResult is the discriminated outcome of record submission.
type RecordOperationResult = results.OperationResult[RecordAccepted, RecordRejected]

// Service is the record submission pipeline.
type Service interface {
	SubmitRecord(ctx context.Context, input SubmitRecordInput) (RecordOperationResult, error)
}

// UserGate is the ban-check collaborator owned by the user module.
type UserGate interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}
