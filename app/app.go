// Package app assembles the configuration, storage, messaging, and module
// services into one runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	communityservice "github.com/raceline-gg/raceline-backend/app/modules/community/application"
	levelservice "github.com/raceline-gg/raceline-backend/app/modules/level/application"
	popularityservice "github.com/raceline-gg/raceline-backend/app/modules/popularity/application"
	popularityqueue "github.com/raceline-gg/raceline-backend/app/modules/popularity/infrastructure/queue"
	recordservice "github.com/raceline-gg/raceline-backend/app/modules/record/application"
	recordoutbox "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/outbox"
	statsservice "github.com/raceline-gg/raceline-backend/app/modules/stats/application"
	userservice "github.com/raceline-gg/raceline-backend/app/modules/user/application"
	"github.com/raceline-gg/raceline-backend/config"
	"github.com/raceline-gg/raceline-backend/db/bundb"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/cache"
	"github.com/raceline-gg/raceline-backend/internal/eventbus"
	"github.com/raceline-gg/raceline-backend/internal/keyedmutex"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
	"github.com/raceline-gg/raceline-backend/internal/server"
	"github.com/raceline-gg/raceline-backend/internal/storage"
)

// App holds the wired application components.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger

	db        *bundb.DBService
	bus       eventbus.EventBus
	cache     cache.Cache
	relay     *recordoutbox.Relay
	scheduler *popularityqueue.Service

	httpServer    *http.Server
	metricsServer *http.Server
}

// NewApp builds every component from the configuration. Nothing is started
// yet; Run starts the servers and background workers.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		attr.String("environment", cfg.Observability.Environment),
	)

	db, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus, err := eventbus.NewNATSEventBus(cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	viewCache, err := cache.NewRedisCache(cfg.Redis.Address, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	thumbnails, err := storage.NewGCSThumbnailStore(ctx, cfg.Thumbnails.Bucket, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize thumbnail store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)
	tracer := otel.Tracer("raceline-backend")

	userGate := &userservice.Gate{Repo: db.UserDB}

	levels := levelservice.NewLevelService(db.LevelDB, userGate, thumbnails, keyedmutex.New(), logger, m, tracer)
	records := recordservice.NewRecordService(db.RecordDB, userGate, cfg.Submission, logger, m, tracer)
	community := communityservice.NewCommunityService(db.CommunityDB, userGate, logger, m, tracer)
	stats := statsservice.NewStatsService(db.StatsDB, userGate, logger, m, tracer)
	users := userservice.NewUserService(db.UserDB, logger, m, tracer)

	relay := recordoutbox.NewRelay(db.OutboxDB, bus, logger, m)

	aggregator := popularityservice.NewAggregator(db.PopularityDB, viewCache, logger, m, tracer)
	scheduler, err := popularityqueue.NewService(ctx, cfg.Postgres.DSN, aggregator, cfg.Popularity, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize popularity scheduler: %w", err)
	}

	tokens := server.NewTokenProvider(cfg.JWT.Secret)
	srv := server.NewServer(levels, records, community, stats, users, tokens, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		Cfg:       cfg,
		Logger:    logger,
		db:        db,
		bus:       bus,
		cache:     viewCache,
		relay:     relay,
		scheduler: scheduler,
		httpServer: &http.Server{
			Addr:    cfg.HTTP.Address,
			Handler: srv.Router(),
		},
		metricsServer: &http.Server{
			Addr:    cfg.Observability.MetricsAddress,
			Handler: metricsMux,
		},
	}, nil
}

// Run starts the background workers and both HTTP listeners, then blocks
// until the context is cancelled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	go a.relay.Run(ctx)

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		a.Logger.Info("HTTP server listening", attr.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		a.Logger.Info("Metrics server listening", attr.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts the servers and workers down and releases every connection.
func (a *App) Close(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", attr.Error(err))
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		a.Logger.Error("Metrics server shutdown failed", attr.Error(err))
	}
	if err := a.scheduler.Stop(ctx); err != nil {
		a.Logger.Error("Popularity scheduler shutdown failed", attr.Error(err))
	}
	if err := a.bus.Close(); err != nil {
		a.Logger.Error("Event bus close failed", attr.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.Logger.Error("Cache close failed", attr.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Error("Database close failed", attr.Error(err))
	}
}
