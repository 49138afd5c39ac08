package statsservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	statsdb "github.com/raceline-gg/raceline-backend/app/modules/stats/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// StatsService implements the Service interface.
type StatsService struct {
	repo    statsdb.Repository
	users   UserDirectory
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	// now is swapped out by tests to pin the month bucket.
	now func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	repo statsdb.Repository,
	users UserDirectory,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
) *StatsService {
	return &StatsService{
		repo:    repo,
		users:   users,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		now:     time.Now,
	}
}

// SubmitStats adds the submitted counters onto the caller's row for the
// current UTC month.
func (s *StatsService) SubmitStats(ctx context.Context, input SubmitStatsInput) (result StatsOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, "SubmitStats", trace.WithAttributes(
		attribute.Int64("user_id", input.CallerID),
	))
	defer span.End()

	startTime := time.Now()
	defer func() {
		s.metrics.ObserveDuration("SubmitStats", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in SubmitStats: %v", r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.Int64("user_id", input.CallerID),
				attr.Error(err),
			)
			span.RecordError(err)
			result = StatsOperationResult{}
		}
	}()

	if input.CallerID == 0 {
		s.logger.ErrorContext(ctx, "No user id resolved for stats submission")
		return s.reject(results.FailureAuthentication, "unable to resolve user id"), nil
	}

	exists, err := s.users.Exists(ctx, input.CallerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to look up user for stats submission",
			attr.Int64("user_id", input.CallerID),
			attr.Error(err),
		)
		return s.reject(results.FailurePersistence, "failed to look up user"), nil
	}
	if !exists {
		s.logger.WarnContext(ctx, "Stats submitted for unknown user",
			attr.Int64("user_id", input.CallerID),
		)
		return s.reject(results.FailureValidation, "unknown user"), nil
	}

	now := s.now().UTC()
	stat := statFromInput(input, now)

	if err := s.repo.Accumulate(ctx, stat); err != nil {
		s.logger.ErrorContext(ctx, "Unable to accumulate stats",
			attr.Int64("user_id", input.CallerID),
			attr.Int("month", stat.Month),
			attr.Int("year", stat.Year),
			attr.Error(err),
		)
		span.RecordError(err)
		return s.reject(results.FailurePersistence, "unable to save stats"), nil
	}

	return results.SuccessResult[StatsAccepted, StatsRejected](StatsAccepted{}), nil
}

func statFromInput(input SubmitStatsInput, now time.Time) *statsdb.Stat {
	return &statsdb.Stat{
		UserID: input.CallerID,
		Month:  int(now.Month()),
		Year:   now.Year(),

		CrashTotal:   input.CrashTotal,
		CrashRegular: input.CrashRegular,
		CrashEye:     input.CrashEye,
		CrashGhost:   input.CrashGhost,
		CrashSticky:  input.CrashSticky,

		DistanceGrounded:  input.DistanceGrounded,
		DistanceInAir:     input.DistanceInAir,
		DistanceRagdoll:   input.DistanceRagdoll,
		DistanceBraking:   input.DistanceBraking,
		DistanceArmsUp:    input.DistanceArmsUp,
		DistanceOnRegular: input.DistanceOnRegular,
		DistanceOnGrass:   input.DistanceOnGrass,
		DistanceOnIce:     input.DistanceOnIce,

		TimeGrounded:  input.TimeGrounded,
		TimeInAir:     input.TimeInAir,
		TimeRagdoll:   input.TimeRagdoll,
		TimeBraking:   input.TimeBraking,
		TimeArmsUp:    input.TimeArmsUp,
		TimeOnRegular: input.TimeOnRegular,
		TimeOnGrass:   input.TimeOnGrass,
		TimeOnIce:     input.TimeOnIce,

		TimesStarted:       input.TimesStarted,
		TimesFinished:      input.TimesFinished,
		WheelsBroken:       input.WheelsBroken,
		CheckpointsCrossed: input.CheckpointsCrossed,
	}
}

func (s *StatsService) reject(reason results.FailureKind, message string) StatsOperationResult {
	return results.FailureResult[StatsAccepted](StatsRejected{
		Reason:  reason,
		Message: message,
	})
}

var _ Service = (*StatsService)(nil)
