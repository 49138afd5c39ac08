package communityservice

import (
	"context"
	"fmt"

	communitydb "github.com/raceline-gg/raceline-backend/app/modules/community/infrastructure/repositories"
)

const (
	defaultVotesPageSize = 100
	maxVotesPageSize     = 100
)

// ListVotes returns one page of votes. The listing is anonymous, so a store
// failure surfaces as a plain error rather than a discriminated outcome.
func (s *CommunityService) ListVotes(ctx context.Context, input ListVotesInput) (*VotesPage, error) {
	filter := communitydb.VoteFilter{
		UserID:  input.UserID,
		SteamID: input.SteamID,
		LevelID: input.LevelID,
		Offset:  input.Offset,
		Limit:   input.Limit,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 || filter.Limit > maxVotesPageSize {
		filter.Limit = defaultVotesPageSize
	}

	rows, total, err := s.repo.ListVotes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListVotes: %w", err)
	}

	votes := make([]VoteView, len(rows))
	for i, row := range rows {
		votes[i] = VoteView{
			ID:            row.ID,
			UserID:        row.UserID,
			UserSteamID:   row.UserSteamID,
			UserSteamName: row.UserSteamName,
			LevelID:       row.LevelID,
			Score:         row.Score,
			DateCreated:   row.DateCreated,
		}
	}

	return &VotesPage{Votes: votes, TotalAmount: total}, nil
}
