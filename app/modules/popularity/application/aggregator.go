package popularityservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	popularitydb "github.com/raceline-gg/raceline-backend/app/modules/popularity/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/cache"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

const defaultBatchSize = 500

// Aggregator computes popularity rankings and writes them to the cache.
// Each Run owns its accumulation state, so variants can run concurrently.
type Aggregator struct {
	repo    popularitydb.Repository
	cache   cache.Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	batchSize int

	// now is swapped out by tests to pin the window.
	now func() time.Time
}

// NewAggregator creates a new Aggregator.
func NewAggregator(
	repo popularitydb.Repository,
	c cache.Cache,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
) *Aggregator {
	return &Aggregator{
		repo:      repo,
		cache:     c,
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// accumulation state for one level during a scan.
type levelAccum struct {
	level       LevelSummary
	recordCount int
	worldRecord *WorldRecordSummary
}

// Run executes one aggregation pass. Any read error or cancellation aborts
// the run before the cache write, leaving the previous value in place.
func (a *Aggregator) Run(ctx context.Context, spec JobSpec) error {
	ctx, span := a.tracer.Start(ctx, "PopularityRun", trace.WithAttributes(
		attribute.String("variant", spec.Name),
	))
	defer span.End()

	startTime := time.Now()
	defer func() {
		a.metrics.ObserveDuration("PopularityRun", time.Since(startTime))
	}()

	since := spec.WindowStart(a.now())

	// Rows arrive ordered by level id, so encounter order doubles as the
	// ascending-id tie-break after the stable sort by count.
	accums := make(map[int64]*levelAccum)
	var order []int64

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			a.metrics.PopularityRuns.WithLabelValues(spec.Name, "cancelled").Inc()
			return fmt.Errorf("popularity run %s cancelled: %w", spec.Name, err)
		}

		rows, err := a.repo.BestRecordsSince(ctx, since, offset, a.batchSize)
		if err != nil {
			a.logger.ErrorContext(ctx, "Popularity scan failed, keeping previous cache value",
				attr.String("variant", spec.Name),
				attr.Int("offset", offset),
				attr.Error(err),
			)
			a.metrics.PopularityRuns.WithLabelValues(spec.Name, "failed").Inc()
			span.RecordError(err)
			return fmt.Errorf("popularity run %s: %w", spec.Name, err)
		}

		for _, row := range rows {
			acc, ok := accums[row.LevelID]
			if !ok {
				acc = &levelAccum{level: LevelSummary{
					LevelID:      row.LevelID,
					UID:          row.LevelUID,
					Name:         row.LevelName,
					Author:       row.LevelAuthor,
					ThumbnailURL: row.LevelThumbnailURL,
				}}
				accums[row.LevelID] = acc
				order = append(order, row.LevelID)
			}
			acc.recordCount++
			if row.IsWR && acc.worldRecord == nil {
				acc.worldRecord = &WorldRecordSummary{
					RecordID: row.RecordID,
					UserID:   row.RecordUserID,
					Time:     row.RecordTime,
				}
			}
		}

		if len(rows) < a.batchSize {
			break
		}
		offset += len(rows)
	}

	entries := make([]LevelPopularity, 0, len(order))
	for _, levelID := range order {
		acc := accums[levelID]
		entries = append(entries, LevelPopularity{
			Level:       acc.level,
			RecordCount: acc.recordCount,
			WorldRecord: acc.worldRecord,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordCount > entries[j].RecordCount
	})
	if len(entries) > spec.Limit {
		entries = entries[:spec.Limit]
	}

	if err := a.cache.Set(ctx, spec.CacheKey, entries); err != nil {
		a.logger.ErrorContext(ctx, "Failed to write popularity cache",
			attr.String("variant", spec.Name),
			attr.String("cache_key", spec.CacheKey),
			attr.Error(err),
		)
		a.metrics.PopularityRuns.WithLabelValues(spec.Name, "failed").Inc()
		span.RecordError(err)
		return fmt.Errorf("popularity run %s cache write: %w", spec.Name, err)
	}

	a.logger.InfoContext(ctx, "Popularity ranking refreshed",
		attr.String("variant", spec.Name),
		attr.Int("levels", len(entries)),
		attr.Duration("took", time.Since(startTime)),
	)
	a.metrics.PopularityRuns.WithLabelValues(spec.Name, "success").Inc()
	return nil
}

var _ Service = (*Aggregator)(nil)
