package recordservice

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// ------------------------
// Fake Record Repo
// ------------------------

// FakeRecordRepository is an in-memory, programmable stub for the
// recorddb.Repository interface. FindDuplicate applies the same tolerance
// matching the SQL query does; Create keeps the outbox events the builder
// produced so tests can assert on the enqueued topics.
type FakeRecordRepository struct {
	mu      sync.Mutex
	records []*recorddb.Record
	outbox  []*recorddb.OutboxEvent
	nextID  int64

	FindDuplicateFunc func(ctx context.Context, userID, levelID int64, time, tolerance float64, splits string) (*recorddb.Record, error)
	CreateFunc        func(ctx context.Context, record *recorddb.Record, events func(recordID int64) ([]*recorddb.OutboxEvent, error)) (int64, error)
}

func NewFakeRecordRepository() *FakeRecordRepository {
	return &FakeRecordRepository{nextID: 1}
}

func (f *FakeRecordRepository) All() []*recorddb.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*recorddb.Record, len(f.records))
	copy(out, f.records)
	return out
}

// OutboxTopics returns the topics of all enqueued outbox events in order.
func (f *FakeRecordRepository) OutboxTopics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	topics := make([]string, len(f.outbox))
	for i, event := range f.outbox {
		topics[i] = event.Topic
	}
	return topics
}

func (f *FakeRecordRepository) FindDuplicate(ctx context.Context, userID, levelID int64, time, tolerance float64, splits string) (*recorddb.Record, error) {
	if f.FindDuplicateFunc != nil {
		return f.FindDuplicateFunc(ctx, userID, levelID, time, tolerance, splits)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.UserID == userID && record.LevelID == levelID &&
			math.Abs(record.Time-time) < tolerance && record.Splits == splits {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *FakeRecordRepository) Create(ctx context.Context, record *recorddb.Record, events func(recordID int64) ([]*recorddb.OutboxEvent, error)) (int64, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, record, events)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = f.nextID
	f.nextID++
	copied := *record
	f.records = append(f.records, &copied)
	if events != nil {
		pending, err := events(record.ID)
		if err != nil {
			// Mirror the real repository: a builder error aborts the insert.
			f.records = f.records[:len(f.records)-1]
			f.nextID--
			return 0, err
		}
		f.outbox = append(f.outbox, pending...)
	}
	return record.ID, nil
}

var _ recorddb.Repository = (*FakeRecordRepository)(nil)

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
