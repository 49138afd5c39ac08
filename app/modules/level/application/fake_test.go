package levelservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	leveldb "github.com/raceline-gg/raceline-backend/app/modules/level/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// ------------------------
// Fake Level Repo
// ------------------------

// FakeLevelRepository is an in-memory, programmable stub for the
// leveldb.Repository interface.
type FakeLevelRepository struct {
	mu     sync.Mutex
	byUID  map[string]*leveldb.Level
	nextID int64

	CreateCalls int
	GetCalls    int

	GetByUIDFunc        func(ctx context.Context, uid string) (*leveldb.Level, error)
	CreateFunc          func(ctx context.Context, level *leveldb.Level) (int64, error)
	UpdateThumbnailFunc func(ctx context.Context, id int64, url string) error
}

func NewFakeLevelRepository() *FakeLevelRepository {
	return &FakeLevelRepository{
		byUID:  make(map[string]*leveldb.Level),
		nextID: 1,
	}
}

// Seed installs a level without counting as a Create call.
func (f *FakeLevelRepository) Seed(level *leveldb.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if level.ID == 0 {
		level.ID = f.nextID
		f.nextID++
	}
	f.byUID[level.UID] = level
}

func (f *FakeLevelRepository) GetByUID(ctx context.Context, uid string) (*leveldb.Level, error) {
	if f.GetByUIDFunc != nil {
		return f.GetByUIDFunc(ctx, uid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	level, ok := f.byUID[uid]
	if !ok {
		return nil, nil
	}
	copied := *level
	return &copied, nil
}

func (f *FakeLevelRepository) Create(ctx context.Context, level *leveldb.Level) (int64, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, level)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	level.ID = f.nextID
	f.nextID++
	copied := *level
	f.byUID[level.UID] = &copied
	return level.ID, nil
}

func (f *FakeLevelRepository) UpdateThumbnail(ctx context.Context, id int64, url string) error {
	if f.UpdateThumbnailFunc != nil {
		return f.UpdateThumbnailFunc(ctx, id, url)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, level := range f.byUID {
		if level.ID == id {
			level.ThumbnailURL = url
			return nil
		}
	}
	return leveldb.ErrLevelNotFound
}

var _ leveldb.Repository = (*FakeLevelRepository)(nil)

// ------------------------
// Fake collaborators
// ------------------------

type FakeUserGate struct {
	BannedUsers map[int64]bool
	Err         error
}

func (f *FakeUserGate) IsBanned(ctx context.Context, userID int64) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return f.BannedUsers[userID], nil
}

type FakeThumbnailStore struct {
	mu      sync.Mutex
	Uploads int
	Err     error
}

func (f *FakeThumbnailStore) Upload(ctx context.Context, uid string, payload string) (string, error) {
	f.mu.Lock()
	f.Uploads++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return "https://storage.googleapis.com/thumbnails/" + uid + ".jpg", nil
}

// ------------------------
// Test plumbing
// ------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
