package communityservice

import (
	"context"

	communitydb "github.com/raceline-gg/raceline-backend/app/modules/community/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// AddFavorite records that the caller favorited a level. Re-favoriting
// returns the existing row's id without inserting.
func (s *CommunityService) AddFavorite(ctx context.Context, input EngagementInput) (EngagementOperationResult, error) {
	return s.serviceWrapper(ctx, "AddFavorite", input.LevelID, func(ctx context.Context) (EngagementOperationResult, error) {
		return s.addEngagement(ctx, input, engagementOps{
			kind: "favorite",
			find: func(ctx context.Context) (int64, bool, error) {
				favorite, err := s.repo.FindFavorite(ctx, input.CallerID, input.LevelID)
				if err != nil || favorite == nil {
					return 0, false, err
				}
				return favorite.ID, true, nil
			},
			create: func(ctx context.Context) (int64, error) {
				return s.repo.CreateFavorite(ctx, &communitydb.Favorite{
					UserID:      input.CallerID,
					LevelID:     input.LevelID,
					DateCreated: s.now().UTC(),
				})
			},
		})
	})
}

// AddUpvote records that the caller upvoted a level. Re-upvoting returns the
// existing row's id without inserting.
func (s *CommunityService) AddUpvote(ctx context.Context, input EngagementInput) (EngagementOperationResult, error) {
	return s.serviceWrapper(ctx, "AddUpvote", input.LevelID, func(ctx context.Context) (EngagementOperationResult, error) {
		return s.addEngagement(ctx, input, engagementOps{
			kind: "upvote",
			find: func(ctx context.Context) (int64, bool, error) {
				upvote, err := s.repo.FindUpvote(ctx, input.CallerID, input.LevelID)
				if err != nil || upvote == nil {
					return 0, false, err
				}
				return upvote.ID, true, nil
			},
			create: func(ctx context.Context) (int64, error) {
				return s.repo.CreateUpvote(ctx, &communitydb.Upvote{
					UserID:      input.CallerID,
					LevelID:     input.LevelID,
					DateCreated: s.now().UTC(),
				})
			},
		})
	})
}

// engagementOps is the per-kind storage behavior shared by favorites and
// upvotes.
type engagementOps struct {
	kind   string
	find   func(ctx context.Context) (int64, bool, error)
	create func(ctx context.Context) (int64, error)
}

func (s *CommunityService) addEngagement(ctx context.Context, input EngagementInput, ops engagementOps) (EngagementOperationResult, error) {
	if input.CallerID == 0 {
		s.logger.ErrorContext(ctx, "No user id resolved for engagement",
			attr.String("kind", ops.kind),
			attr.Int64("level_id", input.LevelID),
		)
		return s.rejectEngagement(input.LevelID, results.FailureAuthentication, "unable to resolve user id"), nil
	}

	banned, err := s.users.IsBanned(ctx, input.CallerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check ban status",
			attr.Int64("user_id", input.CallerID),
			attr.Error(err),
		)
		return s.rejectEngagement(input.LevelID, results.FailurePersistence, "failed to check ban status"), nil
	}
	if banned {
		s.logger.WarnContext(ctx, "Banned user tried to engage with level",
			attr.String("kind", ops.kind),
			attr.Int64("user_id", input.CallerID),
			attr.Int64("level_id", input.LevelID),
		)
		return s.rejectEngagement(input.LevelID, results.FailurePermission, "you are banned"), nil
	}

	existingID, found, err := ops.find(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to look up existing engagement",
			attr.String("kind", ops.kind),
			attr.Int64("user_id", input.CallerID),
			attr.Int64("level_id", input.LevelID),
			attr.Error(err),
		)
		return s.rejectEngagement(input.LevelID, results.FailurePersistence, "failed to check existing "+ops.kind), nil
	}
	if found {
		return results.SuccessResult[EngagementAccepted, EngagementRejected](EngagementAccepted{ID: existingID}), nil
	}

	id, err := ops.create(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save engagement",
			attr.String("kind", ops.kind),
			attr.Int64("user_id", input.CallerID),
			attr.Int64("level_id", input.LevelID),
			attr.Error(err),
		)
		return s.rejectEngagement(input.LevelID, results.FailurePersistence, "unable to save "+ops.kind), nil
	}

	return results.SuccessResult[EngagementAccepted, EngagementRejected](EngagementAccepted{ID: id}), nil
}

func (s *CommunityService) rejectEngagement(levelID int64, reason results.FailureKind, message string) EngagementOperationResult {
	return results.FailureResult[EngagementAccepted](EngagementRejected{
		LevelID: levelID,
		Reason:  reason,
		Message: message,
	})
}
