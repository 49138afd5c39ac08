package communitydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// CommunityDBImpl is the bun-backed community repository.
type CommunityDBImpl struct {
	DB *bun.DB
}

// FindFavorite looks up an existing favorite for (user, level).
func (db *CommunityDBImpl) FindFavorite(ctx context.Context, userID, levelID int64) (*Favorite, error) {
	favorite := &Favorite{}
	err := db.DB.NewSelect().
		Model(favorite).
		Where("user_id = ?", userID).
		Where("level_id = ?", levelID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find favorite for user %d level %d: %w", userID, levelID, err)
	}
	return favorite, nil
}

// CreateFavorite inserts a favorite and returns the new id.
func (db *CommunityDBImpl) CreateFavorite(ctx context.Context, favorite *Favorite) (int64, error) {
	_, err := db.DB.NewInsert().
		Model(favorite).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create favorite for user %d level %d: %w", favorite.UserID, favorite.LevelID, err)
	}
	return favorite.ID, nil
}

// FindUpvote looks up an existing upvote for (user, level).
func (db *CommunityDBImpl) FindUpvote(ctx context.Context, userID, levelID int64) (*Upvote, error) {
	upvote := &Upvote{}
	err := db.DB.NewSelect().
		Model(upvote).
		Where("user_id = ?", userID).
		Where("level_id = ?", levelID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find upvote for user %d level %d: %w", userID, levelID, err)
	}
	return upvote, nil
}

// CreateUpvote inserts an upvote and returns the new id.
func (db *CommunityDBImpl) CreateUpvote(ctx context.Context, upvote *Upvote) (int64, error) {
	_, err := db.DB.NewInsert().
		Model(upvote).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create upvote for user %d level %d: %w", upvote.UserID, upvote.LevelID, err)
	}
	return upvote.ID, nil
}

// ListVotes pages through votes joined to their users, oldest first.
func (db *CommunityDBImpl) ListVotes(ctx context.Context, filter VoteFilter) ([]*VoteRow, int, error) {
	query := db.DB.NewSelect().
		TableExpr("votes AS v").
		Join("JOIN users AS usr ON usr.id = v.user_id").
		ColumnExpr("v.id AS id").
		ColumnExpr("v.user_id AS user_id").
		ColumnExpr("usr.steam_id AS user_steam_id").
		ColumnExpr("usr.steam_name AS user_steam_name").
		ColumnExpr("v.level_id AS level_id").
		ColumnExpr("v.score AS score").
		ColumnExpr("v.date_created AS date_created")

	query = applyVoteFilter(query, filter)

	total, err := query.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	var rows []*VoteRow
	err = query.
		OrderExpr("v.id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list votes: %w", err)
	}

	return rows, total, nil
}

func applyVoteFilter(query *bun.SelectQuery, filter VoteFilter) *bun.SelectQuery {
	if filter.UserID != nil {
		query = query.Where("v.user_id = ?", *filter.UserID)
	}
	if filter.SteamID != "" {
		query = query.Where("usr.steam_id = ?", filter.SteamID)
	}
	if filter.LevelID != nil {
		query = query.Where("v.level_id = ?", *filter.LevelID)
	}
	return query
}

var _ Repository = (*CommunityDBImpl)(nil)
