package popularityservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	popularitydb "github.com/raceline-gg/raceline-backend/app/modules/popularity/infrastructure/repositories"
)

var aggNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func dailySpecForTest(limit int) JobSpec {
	return JobSpec{
		Name:        "daily",
		WindowStart: func(now time.Time) time.Time { return now.AddDate(0, 0, -1) },
		Limit:       limit,
		CacheKey:    CacheKeyDaily,
	}
}

func newTestAggregator(repo *FakePopularityRepository, c *FakeCache) *Aggregator {
	agg := NewAggregator(repo, c, testLogger(), testMetrics(), testTracer())
	agg.now = func() time.Time { return aggNow }
	return agg
}

func bestRow(recordID, levelID int64, isWR bool, age time.Duration) *popularitydb.BestRecordRow {
	return &popularitydb.BestRecordRow{
		RecordID:     recordID,
		RecordUserID: 100 + recordID,
		RecordTime:   60 + float64(recordID),
		IsWR:         isWR,
		DateCreated:  aggNow.Add(-age),
		LevelID:      levelID,
		LevelUID:     "uid-level",
		LevelName:    "level",
		LevelAuthor:  "author",
	}
}

func TestAggregator_RanksByInWindowBestRecords(t *testing.T) {
	repo := &FakePopularityRepository{}
	// Level 1: three in-window best records, one flagged world record.
	repo.Seed(
		bestRow(1, 1, false, time.Hour),
		bestRow(2, 1, true, 2*time.Hour),
		bestRow(3, 1, false, 3*time.Hour),
	)
	// Level 2: five in-window best records, none flagged.
	repo.Seed(
		bestRow(4, 2, false, time.Hour),
		bestRow(5, 2, false, time.Hour),
		bestRow(6, 2, false, time.Hour),
		bestRow(7, 2, false, time.Hour),
		bestRow(8, 2, false, time.Hour),
	)
	// Level 3: only records older than the window.
	repo.Seed(bestRow(9, 3, false, 48*time.Hour))

	c := NewFakeCache()
	agg := newTestAggregator(repo, c)

	require.NoError(t, agg.Run(context.Background(), dailySpecForTest(10)))

	entries, ok := c.Value(CacheKeyDaily).([]LevelPopularity)
	require.True(t, ok, "cache must hold the ranked entries")
	require.Len(t, entries, 2, "a level with zero in-window records is absent")

	assert.Equal(t, int64(2), entries[0].Level.LevelID)
	assert.Equal(t, 5, entries[0].RecordCount)
	assert.Nil(t, entries[0].WorldRecord)

	assert.Equal(t, int64(1), entries[1].Level.LevelID)
	assert.Equal(t, 3, entries[1].RecordCount)
	require.NotNil(t, entries[1].WorldRecord)
	assert.Equal(t, int64(2), entries[1].WorldRecord.RecordID)
}

func TestAggregator_TieBreaksByAscendingLevelID(t *testing.T) {
	repo := &FakePopularityRepository{}
	repo.Seed(
		bestRow(1, 7, false, time.Hour),
		bestRow(2, 7, false, time.Hour),
		bestRow(3, 4, false, time.Hour),
		bestRow(4, 4, false, time.Hour),
	)
	c := NewFakeCache()
	agg := newTestAggregator(repo, c)

	require.NoError(t, agg.Run(context.Background(), dailySpecForTest(10)))

	entries := c.Value(CacheKeyDaily).([]LevelPopularity)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(4), entries[0].Level.LevelID)
	assert.Equal(t, int64(7), entries[1].Level.LevelID)
}

func TestAggregator_TruncatesToLimit(t *testing.T) {
	repo := &FakePopularityRepository{}
	for levelID := int64(1); levelID <= 5; levelID++ {
		repo.Seed(bestRow(levelID, levelID, false, time.Hour))
	}
	c := NewFakeCache()
	agg := newTestAggregator(repo, c)

	require.NoError(t, agg.Run(context.Background(), dailySpecForTest(2)))

	entries := c.Value(CacheKeyDaily).([]LevelPopularity)
	assert.Len(t, entries, 2)
}

func TestAggregator_ScansInBatches(t *testing.T) {
	repo := &FakePopularityRepository{}
	for recordID := int64(1); recordID <= 7; recordID++ {
		repo.Seed(bestRow(recordID, 1, false, time.Hour))
	}
	c := NewFakeCache()
	agg := newTestAggregator(repo, c)
	agg.batchSize = 3

	require.NoError(t, agg.Run(context.Background(), dailySpecForTest(10)))

	assert.Equal(t, 3, repo.Calls, "7 rows at batch size 3 take three pages")
	entries := c.Value(CacheKeyDaily).([]LevelPopularity)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].RecordCount)
}

func TestAggregator_ReadFailureLeavesCacheUntouched(t *testing.T) {
	repo := &FakePopularityRepository{
		BestRecordsSinceFunc: func(ctx context.Context, since time.Time, offset, limit int) ([]*popularitydb.BestRecordRow, error) {
			return nil, errors.New("connection reset")
		},
	}
	c := NewFakeCache()
	agg := newTestAggregator(repo, c)

	err := agg.Run(context.Background(), dailySpecForTest(10))
	require.Error(t, err)
	assert.Zero(t, c.SetCalls, "a failed run must not overwrite the cache")
}

func TestAggregator_CancellationAbortsBeforeCacheWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	repo := &FakePopularityRepository{}
	repo.BestRecordsSinceFunc = func(ctx context.Context, since time.Time, offset, limit int) ([]*popularitydb.BestRecordRow, error) {
		// Cancel mid-scan; the full first page forces a second iteration
		// where the aggregator must notice before reading again.
		cancel()
		rows := make([]*popularitydb.BestRecordRow, limit)
		for i := range rows {
			rows[i] = bestRow(int64(i+1), 1, false, time.Hour)
		}
		return rows, nil
	}
	c := NewFakeCache()
	agg := newTestAggregator(repo, c)
	agg.batchSize = 4

	err := agg.Run(ctx, dailySpecForTest(10))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.SetCalls, "a cancelled run must not overwrite the cache")
}

func TestAggregator_CacheWriteFailureSurfaces(t *testing.T) {
	repo := &FakePopularityRepository{}
	repo.Seed(bestRow(1, 1, false, time.Hour))
	c := NewFakeCache()
	c.SetErr = errors.New("redis unavailable")
	agg := newTestAggregator(repo, c)

	err := agg.Run(context.Background(), dailySpecForTest(10))
	require.Error(t, err)
}
