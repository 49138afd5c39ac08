package levelservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	leveldb "github.com/raceline-gg/raceline-backend/app/modules/level/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/keyedmutex"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
	"github.com/raceline-gg/raceline-backend/internal/storage"
)

// LevelService implements the Service interface.
type LevelService struct {
	repo       leveldb.Repository
	users      UserGate
	thumbnails storage.ThumbnailStore
	locks      *keyedmutex.Registry
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// NewLevelService creates a new LevelService.
func NewLevelService(
	repo leveldb.Repository,
	users UserGate,
	thumbnails storage.ThumbnailStore,
	locks *keyedmutex.Registry,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
) *LevelService {
	return &LevelService{
		repo:       repo,
		users:      users,
		thumbnails: thumbnails,
		locks:      locks,
		logger:     logger,
		metrics:    m,
		tracer:     tracer,
	}
}

// serviceWrapper wraps an operation with tracing, duration metrics, and
// panic recovery.
func (s *LevelService) serviceWrapper(
	ctx context.Context,
	operationName string,
	uid string,
	op func(ctx context.Context) (LevelOperationResult, error),
) (result LevelOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("level_uid", uid),
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
				attr.String("level_uid", uid),
				attr.Error(err),
			)
			span.RecordError(err)
			result = LevelOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("level_uid", uid),
			attr.Error(wrappedErr),
		)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	return result, nil
}
