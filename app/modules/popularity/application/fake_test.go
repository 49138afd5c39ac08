package popularityservice

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	popularitydb "github.com/raceline-gg/raceline-backend/app/modules/popularity/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// FakePopularityRepository serves pages from an in-memory row set, applying
// the same window filter and ordering the SQL scan does.
type FakePopularityRepository struct {
	mu   sync.Mutex
	rows []*popularitydb.BestRecordRow

	Calls int

	BestRecordsSinceFunc func(ctx context.Context, since time.Time, offset, limit int) ([]*popularitydb.BestRecordRow, error)
}

func (f *FakePopularityRepository) Seed(rows ...*popularitydb.BestRecordRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
}

func (f *FakePopularityRepository) BestRecordsSince(ctx context.Context, since time.Time, offset, limit int) ([]*popularitydb.BestRecordRow, error) {
	if f.BestRecordsSinceFunc != nil {
		return f.BestRecordsSinceFunc(ctx, since, offset, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++

	var matched []*popularitydb.BestRecordRow
	for _, row := range f.rows {
		if !row.DateCreated.Before(since) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LevelID != matched[j].LevelID {
			return matched[i].LevelID < matched[j].LevelID
		}
		return matched[i].RecordID < matched[j].RecordID
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := make([]*popularitydb.BestRecordRow, end-offset)
	copy(page, matched[offset:end])
	return page, nil
}

var _ popularitydb.Repository = (*FakePopularityRepository)(nil)

// FakeCache records Set calls and can fail on demand.
type FakeCache struct {
	mu       sync.Mutex
	values   map[string]any
	SetCalls int
	SetErr   error
}

func NewFakeCache() *FakeCache {
	return &FakeCache{values: make(map[string]any)}
}

func (f *FakeCache) Set(ctx context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.SetCalls++
	f.values[key] = value
	return nil
}

func (f *FakeCache) Get(ctx context.Context, key string, dest any) error {
	return nil
}

func (f *FakeCache) Close() error { return nil }

// Value returns the last value written under key, or nil.
func (f *FakeCache) Value(key string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
