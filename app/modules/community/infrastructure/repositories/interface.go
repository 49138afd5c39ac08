package communitydb

import "context"

// Repository provides favorite, upvote, and vote persistence. The Find
// methods return (nil, nil) when no row matches.
type Repository interface {
	FindFavorite(ctx context.Context, userID, levelID int64) (*Favorite, error)
	CreateFavorite(ctx context.Context, favorite *Favorite) (int64, error)

	FindUpvote(ctx context.Context, userID, levelID int64) (*Upvote, error)
	CreateUpvote(ctx context.Context, upvote *Upvote) (int64, error)

	// ListVotes returns one page of votes matching the filter, ordered by
	// id, plus the total match count before paging.
	ListVotes(ctx context.Context, filter VoteFilter) ([]*VoteRow, int, error)
}
