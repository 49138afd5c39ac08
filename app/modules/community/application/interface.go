package communityservice

import (
	"context"
	"time"

	"github.com/raceline-gg/raceline-backend/internal/results"
)

// EngagementInput identifies the level a caller favorites or upvotes.
type EngagementInput struct {
	LevelID  int64
	CallerID int64
}

// EngagementAccepted is the success payload. ID is the existing row's id
// when the engagement was already present.
type EngagementAccepted struct {
	ID int64 `json:"id"`
}

// EngagementRejected is the failure payload.
type EngagementRejected struct {
	LevelID int64               `json:"level_id"`
	Reason  results.FailureKind `json:"reason"`
	Message string              `json:"message"`
}

// EngagementOperationResult is the discriminated outcome of a favorite or
// upvote operation.
type EngagementOperationResult = results.OperationResult[EngagementAccepted, EngagementRejected]

// VoteView is one vote in a listing page.
type VoteView struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	UserSteamID   string    `json:"user_steam_id"`
	UserSteamName string    `json:"user_steam_name"`
	LevelID       int64     `json:"level_id"`
	Score         int       `json:"score"`
	DateCreated   time.Time `json:"date_created"`
}

// ListVotesInput filters and pages the anonymous vote listing.
type ListVotesInput struct {
	UserID  *int64
	SteamID string
	LevelID *int64
	Offset  int
	Limit   int
}

// VotesPage is one page of votes plus the total match count.
type VotesPage struct {
	Votes       []VoteView `json:"votes"`
	TotalAmount int        `json:"total_amount"`
}

// Service is the community engagement surface.
type Service interface {
	AddFavorite(ctx context.Context, input EngagementInput) (EngagementOperationResult, error)
	AddUpvote(ctx context.Context, input EngagementInput) (EngagementOperationResult, error)
	ListVotes(ctx context.Context, input ListVotesInput) (*VotesPage, error)
}

// UserGate is the ban-check collaborator owned by the user module.
type UserGate interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}
