package recordservice

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	recordevents "github.com/raceline-gg/raceline-backend/app/modules/record/domain/events"
	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// SubmitRecord validates, deduplicates, and persists one timed run together
// with its outbox events. The duplicate check and the insert are two separate
// operations; two truly simultaneous submissions can both miss each other's
// insert, which the re-check window bounds but does not eliminate.
func (s *RecordService) SubmitRecord(ctx context.Context, input SubmitRecordInput) (RecordOperationResult, error) {
	return s.serviceWrapper(ctx, "SubmitRecord", input.LevelID, func(ctx context.Context) (RecordOperationResult, error) {
		if slices.Contains(s.guard.DeniedLevels, input.LevelID) {
			s.logger.InfoContext(ctx, "Submission for deny-listed level acknowledged without storing",
				attr.Int64("level_id", input.LevelID),
			)
			s.metrics.RecordsSubmitted.WithLabelValues("suppressed").Inc()
			return results.SuccessResult[RecordAccepted, RecordRejected](RecordAccepted{}), nil
		}

		if input.CallerID == 0 {
			s.logger.ErrorContext(ctx, "No user id resolved for record submission",
				attr.Int64("level_id", input.LevelID),
			)
			return s.reject(input.LevelID, results.FailureAuthentication, "unable to resolve user id"), nil
		}

		banned, err := s.users.IsBanned(ctx, input.CallerID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to check ban status",
				attr.Int64("user_id", input.CallerID),
				attr.Error(err),
			)
			return s.reject(input.LevelID, results.FailurePersistence, "failed to check ban status"), nil
		}
		if banned {
			s.logger.WarnContext(ctx, "Banned user tried to submit record",
				attr.Int64("user_id", input.CallerID),
				attr.Int64("level_id", input.LevelID),
			)
			return s.reject(input.LevelID, results.FailurePermission, "you are banned"), nil
		}

		if input.ClaimedUserID != input.CallerID {
			s.logger.ErrorContext(ctx, "Claimed user does not match caller identity",
				attr.Int64("claimed_user_id", input.ClaimedUserID),
				attr.Int64("user_id", input.CallerID),
			)
			return s.reject(input.LevelID, results.FailureValidation, "user id does not match"), nil
		}

		joinedSplits := JoinSplits(input.Splits)

		existing, err := s.repo.FindDuplicate(ctx, input.CallerID, input.LevelID, input.Time, s.guard.TimeTolerance, joinedSplits)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to search for duplicate record",
				attr.Int64("user_id", input.CallerID),
				attr.Int64("level_id", input.LevelID),
				attr.Error(err),
			)
			return s.reject(input.LevelID, results.FailurePersistence, "failed to check for duplicate"), nil
		}
		if existing != nil && s.withinDuplicateWindow(existing.DateCreated) {
			s.logger.WarnContext(ctx, "Double record submission detected",
				attr.Int64("user_id", input.CallerID),
				attr.Int64("level_id", input.LevelID),
				attr.Int64("existing_record_id", existing.ID),
			)
			s.metrics.RecordsSubmitted.WithLabelValues("duplicate").Inc()
			return s.reject(input.LevelID, results.FailureDuplicate, "record already submitted"), nil
		}

		record := &recorddb.Record{
			LevelID:     input.LevelID,
			UserID:      input.CallerID,
			Time:        input.Time,
			Splits:      joinedSplits,
			IsValid:     input.IsValid,
			GameVersion: input.GameVersion,
			ModVersion:  input.ModVersion,
			DateCreated: s.now().UTC(),
		}

		id, err := s.repo.Create(ctx, record, func(recordID int64) ([]*recorddb.OutboxEvent, error) {
			return s.outboxEvents(recordID, input)
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Unable to save record",
				attr.Int64("user_id", input.CallerID),
				attr.Int64("level_id", input.LevelID),
				attr.Error(err),
			)
			return s.reject(input.LevelID, results.FailurePersistence, "unable to save record"), nil
		}

		s.metrics.RecordsSubmitted.WithLabelValues("accepted").Inc()

		return results.SuccessResult[RecordAccepted, RecordRejected](RecordAccepted{RecordID: id}), nil
	})
}

// withinDuplicateWindow reports whether the candidate was created inside the
// duplicate window. The store keeps UTC wall-clock timestamps but hosts have
// been seen handing them back tagged with the local zone, so the candidate
// counts when either the local or the UTC reference clock puts it inside the
// window.
func (s *RecordService) withinDuplicateWindow(created time.Time) bool {
	now := s.now()
	localDelta := naiveClock(now).Sub(naiveClock(created))
	utcDelta := naiveClock(now.UTC()).Sub(naiveClock(created))
	return localDelta < s.guard.DuplicateWindow || utcDelta < s.guard.DuplicateWindow
}

// naiveClock strips the zone so wall-clock readings compare directly.
func naiveClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// outboxEvents builds the four downstream events for a committed record.
// They are inserted in the same transaction as the record, so the relay
// publishes them even if the process dies right after the commit.
func (s *RecordService) outboxEvents(recordID int64, input SubmitRecordInput) ([]*recorddb.OutboxEvent, error) {
	now := s.now().UTC()
	build := []struct {
		topic   string
		payload any
	}{
		{recordevents.TopicRecordCreated, recordevents.RecordCreatedPayload{
			RecordID: recordID,
		}},
		{recordevents.TopicRecordMedia, recordevents.RecordMediaPayload{
			RecordID:       recordID,
			GhostData:      input.GhostData,
			ScreenshotData: input.ScreenshotData,
		}},
		{recordevents.TopicPersonalBest, recordevents.PersonalBestPayload{
			RecordID: recordID,
			UserID:   input.CallerID,
			LevelID:  input.LevelID,
			Time:     input.Time,
		}},
		{recordevents.TopicWorldRecord, recordevents.WorldRecordPayload{
			RecordID: recordID,
			UserID:   input.CallerID,
			LevelID:  input.LevelID,
			Time:     input.Time,
		}},
	}

	events := make([]*recorddb.OutboxEvent, 0, len(build))
	for _, e := range build {
		raw, err := json.Marshal(e.payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", e.topic, err)
		}
		events = append(events, &recorddb.OutboxEvent{
			Topic:       e.topic,
			Payload:     raw,
			AvailableAt: now,
			DateCreated: now,
		})
	}
	return events, nil
}

func (s *RecordService) reject(levelID int64, reason results.FailureKind, message string) RecordOperationResult {
	if reason != results.FailureDuplicate {
		s.metrics.RecordsSubmitted.WithLabelValues("rejected").Inc()
	}
	return results.FailureResult[RecordAccepted](RecordRejected{
		LevelID: levelID,
		Reason:  reason,
		Message: message,
	})
}
