package popularityqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	popularityservice "github.com/raceline-gg/raceline-backend/app/modules/popularity/application"
	"github.com/raceline-gg/raceline-backend/config"
	"github.com/raceline-gg/raceline-backend/internal/attr"
)

// PopularityWorker runs one aggregation variant per job.
type PopularityWorker struct {
	river.WorkerDefaults[PopularityArgs]

	aggregator popularityservice.Service
	cfg        config.PopularityConfig
	logger     *slog.Logger
}

// NewPopularityWorker creates the worker backing popularity_refresh jobs.
func NewPopularityWorker(aggregator popularityservice.Service, cfg config.PopularityConfig, logger *slog.Logger) *PopularityWorker {
	return &PopularityWorker{aggregator: aggregator, cfg: cfg, logger: logger}
}

// Work resolves the variant and runs the aggregation. Unknown variants are
// permanent failures; a run error is returned so River retries the job.
func (w *PopularityWorker) Work(ctx context.Context, job *river.Job[PopularityArgs]) error {
	spec, ok := popularityservice.SpecByName(job.Args.Variant, w.cfg)
	if !ok {
		w.logger.ErrorContext(ctx, "Unknown popularity variant in job args",
			attr.String("variant", job.Args.Variant),
		)
		return river.JobCancel(fmt.Errorf("unknown popularity variant %q", job.Args.Variant))
	}
	return w.aggregator.Run(ctx, spec)
}

// Service owns the River client that schedules the periodic popularity runs.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a River-backed scheduler with the three standing
// variants registered as periodic jobs. River requires pgx, so the scheduler
// keeps its own pool next to the bun connection.
func NewService(ctx context.Context, dsn string, aggregator popularityservice.Service, cfg config.PopularityConfig, logger *slog.Logger) (*Service, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN for scheduler: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool for scheduler: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database for scheduler: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewPopularityWorker(aggregator, cfg, logger))

	periodic := make([]*river.PeriodicJob, 0, 3)
	for _, variant := range []string{"daily", "weekly", "monthly"} {
		periodic = append(periodic, river.NewPeriodicJob(
			river.PeriodicInterval(cfg.RefreshInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return PopularityArgs{Variant: variant}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 3},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{client: client, pool: pool, logger: logger}, nil
}

// Start starts the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting popularity scheduler")
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop stops the scheduler and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping popularity scheduler")
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	return nil
}
