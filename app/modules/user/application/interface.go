package userservice

import (
	"context"

	"github.com/raceline-gg/raceline-backend/internal/results"
)

// UpdateDiscordInput links the caller's account to a Discord id.
type UpdateDiscordInput struct {
	CallerID  int64
	DiscordID string
}

// DiscordLinked is the success payload.
type DiscordLinked struct {
	UserID int64 `json:"user_id"`
}

// UserRejected is the failure payload.
type UserRejected struct {
	Reason  results.FailureKind `json:"reason"`
	Message string              `json:"message"`
}

// UserOperationResult is the discriminated outcome of a user operation.
type UserOperationResult = results.OperationResult[DiscordLinked, UserRejected]

// Service is the user account surface.
type Service interface {
	UpdateDiscordID(ctx context.Context, input UpdateDiscordInput) (UserOperationResult, error)
}
