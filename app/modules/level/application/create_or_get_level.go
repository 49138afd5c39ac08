package levelservice

import (
	"context"
	"regexp"

	leveldb "github.com/raceline-gg/raceline-backend/app/modules/level/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// CreateOrGetLevel resolves a level submission to a single level id. For any
// number of concurrent calls sharing a UID exactly one row is inserted and
// every caller observes the same id.
//
// The common case (level exists with a thumbnail) is served by an unlocked
// read; everything else runs under the per-UID guard.
func (s *LevelService) CreateOrGetLevel(ctx context.Context, input CreateOrGetLevelInput) (LevelOperationResult, error) {
	return s.serviceWrapper(ctx, "CreateOrGetLevel", input.UID, func(ctx context.Context) (LevelOperationResult, error) {
		if input.CallerID == 0 {
			s.logger.ErrorContext(ctx, "No user id resolved for level submission",
				attr.String("level_uid", input.UID),
			)
			return results.FailureResult[LevelResolved](LevelFailed{
				UID:     input.UID,
				Reason:  results.FailureAuthentication,
				Message: "unable to resolve user id",
			}), nil
		}

		banned, err := s.users.IsBanned(ctx, input.CallerID)
		if err != nil {
			return s.persistenceFailure(ctx, input.UID, "failed to check ban status", err), nil
		}
		if banned {
			s.logger.WarnContext(ctx, "Banned user tried to submit level",
				attr.Int64("user_id", input.CallerID),
				attr.String("level_uid", input.UID),
			)
			return results.FailureResult[LevelResolved](LevelFailed{
				UID:     input.UID,
				Reason:  results.FailurePermission,
				Message: "you are banned",
			}), nil
		}

		// Unlocked fast path.
		level, err := s.repo.GetByUID(ctx, input.UID)
		if err != nil {
			return s.persistenceFailure(ctx, input.UID, "failed to get level", err), nil
		}
		if level != nil && level.ThumbnailURL != "" {
			return results.SuccessResult[LevelResolved, LevelFailed](LevelResolved{
				LevelID: level.ID,
				UID:     level.UID,
			}), nil
		}

		release, err := s.locks.AcquireCtx(ctx, input.UID)
		if err != nil {
			return LevelOperationResult{}, err
		}
		defer release()

		return s.getOrCreateLocked(ctx, input)
	})
}

// getOrCreateLocked re-checks existence under the guard, closing the race
// between the unlocked read and the guard acquisition.
func (s *LevelService) getOrCreateLocked(ctx context.Context, input CreateOrGetLevelInput) (LevelOperationResult, error) {
	level, err := s.repo.GetByUID(ctx, input.UID)
	if err != nil {
		return s.persistenceFailure(ctx, input.UID, "failed to get level", err), nil
	}

	if level != nil {
		if level.ThumbnailURL == "" && input.Thumbnail != "" {
			s.refreshThumbnail(ctx, level, input.Thumbnail)
		}
		return results.SuccessResult[LevelResolved, LevelFailed](LevelResolved{
			LevelID: level.ID,
			UID:     level.UID,
		}), nil
	}

	return s.createLevel(ctx, input)
}

// refreshThumbnail retries the upload for a level that was created without
// one. Failure is a degradation, not an error: the level keeps its empty
// thumbnail and a future submission retries.
func (s *LevelService) refreshThumbnail(ctx context.Context, level *leveldb.Level, payload string) {
	url, err := s.thumbnails.Upload(ctx, level.UID, payload)
	if err != nil {
		s.metrics.ThumbnailUploadFailures.Inc()
		s.logger.ErrorContext(ctx, "Unable to upload thumbnail",
			attr.String("level_uid", level.UID),
			attr.Error(err),
		)
		return
	}

	if err := s.repo.UpdateThumbnail(ctx, level.ID, url); err != nil {
		s.logger.ErrorContext(ctx, "Unable to save thumbnail url",
			attr.String("level_uid", level.UID),
			attr.Error(err),
		)
	}
}

func (s *LevelService) createLevel(ctx context.Context, input CreateOrGetLevelInput) (LevelOperationResult, error) {
	thumbnailURL := ""
	if input.Thumbnail != "" {
		url, err := s.thumbnails.Upload(ctx, input.UID, input.Thumbnail)
		if err != nil {
			s.metrics.ThumbnailUploadFailures.Inc()
			s.logger.ErrorContext(ctx, "Unable to upload thumbnail",
				attr.String("level_uid", input.UID),
				attr.Error(err),
			)
		} else {
			thumbnailURL = url
		}
	}

	level := &leveldb.Level{
		UID:          input.UID,
		WID:          input.WID,
		Name:         input.Name,
		Author:       htmlTagPattern.ReplaceAllString(input.Author, ""),
		TimeAuthor:   input.TimeAuthor,
		TimeGold:     input.TimeGold,
		TimeSilver:   input.TimeSilver,
		TimeBronze:   input.TimeBronze,
		ThumbnailURL: thumbnailURL,
		IsValid:      input.IsValid,
		CreatedBy:    input.CallerID,
	}

	id, err := s.repo.Create(ctx, level)
	if err != nil {
		return s.persistenceFailure(ctx, input.UID, "failed to save level", err), nil
	}

	s.metrics.LevelsCreated.Inc()
	s.logger.InfoContext(ctx, "Level created",
		attr.Int64("level_id", id),
		attr.String("level_uid", input.UID),
		attr.Int64("created_by", input.CallerID),
	)

	return results.SuccessResult[LevelResolved, LevelFailed](LevelResolved{
		LevelID: id,
		UID:     input.UID,
		Created: true,
	}), nil
}

func (s *LevelService) persistenceFailure(ctx context.Context, uid, message string, err error) LevelOperationResult {
	s.logger.ErrorContext(ctx, message,
		attr.String("level_uid", uid),
		attr.Error(err),
	)
	return results.FailureResult[LevelResolved](LevelFailed{
		UID:     uid,
		Reason:  results.FailurePersistence,
		Message: message,
	})
}
