package communityservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	communitydb "github.com/raceline-gg/raceline-backend/app/modules/community/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// CommunityService implements the Service interface.
type CommunityService struct {
	repo    communitydb.Repository
	users   UserGate
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	// now is swapped out by tests.
	now func() time.Time
}

// NewCommunityService creates a new CommunityService.
func NewCommunityService(
	repo communitydb.Repository,
	users UserGate,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
) *CommunityService {
	return &CommunityService{
		repo:    repo,
		users:   users,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		now:     time.Now,
	}
}

// serviceWrapper wraps an operation with tracing, duration metrics, and
// panic recovery.
func (s *CommunityService) serviceWrapper(
	ctx context.Context,
	operationName string,
	levelID int64,
	op func(ctx context.Context) (EngagementOperationResult, error),
) (result EngagementOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.Int64("level_id", levelID),
	))
	defer span.End()

	startTime := time.Now()
	defer func() {
		s.metrics.ObserveDuration(operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Int64("level_id", levelID),
				attr.Error(err),
			)
			span.RecordError(err)
			result = EngagementOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.Int64("level_id", levelID),
			attr.Error(wrappedErr),
		)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}
