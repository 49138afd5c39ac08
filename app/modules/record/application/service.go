package recordservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/config"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// RecordService implements the Service interface. Downstream events go
// through the record outbox, so the service never talks to the bus directly.
type RecordService struct {
	repo    recorddb.Repository
	users   UserGate
	guard   config.SubmissionConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	// now is swapped out by tests to pin the duplicate window.
	now func() time.Time
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	repo recorddb.Repository,
	users UserGate,
	guard config.SubmissionConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
) *RecordService {
	return &RecordService{
		repo:    repo,
		users:   users,
		guard:   guard,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		now:     time.Now,
	}
}

// serviceWrapper wraps an operation with tracing, duration metrics, and
// panic recovery.
func (s *RecordService) serviceWrapper(
	ctx context.Context,
	operationName string,
	levelID int64,
	op func(ctx context.Context) (RecordOperationResult, error),
) (result RecordOperationResult, err error) {
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
			result = RecordOperationResult{}
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
