package recordservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recordevents "github.com/raceline-gg/raceline-backend/app/modules/record/domain/events"
	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/config"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

func testGuard() config.SubmissionConfig {
	return config.SubmissionConfig{
		DeniedLevels:    []int64{99},
		TimeTolerance:   0.001,
		DuplicateWindow: time.Minute,
	}
}

func newSubmitService(repo *FakeRecordRepository, users *FakeUserGate) *RecordService {
	return NewRecordService(repo, users, testGuard(), testLogger(), testMetrics(), testTracer())
}

func baseInput() SubmitRecordInput {
	return SubmitRecordInput{
		LevelID:        5,
		ClaimedUserID:  1,
		CallerID:       1,
		Time:           61.234,
		Splits:         []float64{10.1, 20.2, 30.9},
		IsValid:        true,
		GameVersion:    "1.4.2",
		ModVersion:     "0.9.0",
		GhostData:      "Z2hvc3Q=",
		ScreenshotData: "c2NyZWVu",
	}
}

func TestRecordService_AcceptsAndEnqueuesEvents(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	result, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.NotZero(t, result.Success.RecordID)

	records := repo.All()
	require.Len(t, records, 1)
	assert.Equal(t, "10.1|20.2|30.9", records[0].Splits)
	assert.False(t, records[0].IsBest, "best flag is owned by the downstream processor")
	assert.False(t, records[0].IsWR, "world-record flag is owned by the downstream processor")

	assert.Equal(t, []string{
		recordevents.TopicRecordCreated,
		recordevents.TopicRecordMedia,
		recordevents.TopicPersonalBest,
		recordevents.TopicWorldRecord,
	}, repo.OutboxTopics(), "all four events must be enqueued with the insert")
}

func TestRecordService_DuplicateWithinWindow(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	first, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	second, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, second.IsFailure())
	assert.Equal(t, results.FailureDuplicate, second.Failure.Reason)

	assert.Len(t, repo.All(), 1, "duplicate must not insert a second row")
	assert.Len(t, repo.OutboxTopics(), 4, "duplicate must not enqueue events")
}

func TestRecordService_DifferentTimeIsNotDuplicate(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	first, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	input := baseInput()
	input.Time = 61.236 // delta >= tolerance
	second, err := service.SubmitRecord(context.Background(), input)
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.Len(t, repo.All(), 2)
}

func TestRecordService_DifferentSplitsIsNotDuplicate(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	first, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	input := baseInput()
	input.Splits = []float64{10.1, 20.2, 31.0}
	second, err := service.SubmitRecord(context.Background(), input)
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.Len(t, repo.All(), 2)
}

func TestRecordService_DuplicateOutsideWindowIsAccepted(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	submitted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return submitted }

	first, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	// Resubmit the identical tuple well past the window.
	service.now = func() time.Time { return submitted.Add(10 * time.Minute) }
	second, err := service.SubmitRecord(context.Background(), baseInput())
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.Len(t, repo.All(), 2)
}

func TestRecordService_DenyListedLevelIsSilentNoOp(t *testing.T) {
	repo := NewFakeRecordRepository()
	service := newSubmitService(repo, &FakeUserGate{})

	input := baseInput()
	input.LevelID = 99

	result, err := service.SubmitRecord(context.Background(), input)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Zero(t, result.Success.RecordID)
	assert.Empty(t, repo.All(), "deny-listed submission must not touch storage")
	assert.Empty(t, repo.OutboxTopics())
}

func TestRecordService_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(input *SubmitRecordInput)
		users          *FakeUserGate
		repoSetup      func(repo *FakeRecordRepository)
		expectedReason results.FailureKind
	}{
		{
			name:           "missing caller identity",
			mutate:         func(input *SubmitRecordInput) { input.CallerID = 0 },
			users:          &FakeUserGate{},
			expectedReason: results.FailureAuthentication,
		},
		{
			name:           "banned caller",
			mutate:         func(input *SubmitRecordInput) {},
			users:          &FakeUserGate{BannedUsers: map[int64]bool{1: true}},
			expectedReason: results.FailurePermission,
		},
		{
			name:           "claimed user mismatch",
			mutate:         func(input *SubmitRecordInput) { input.ClaimedUserID = 2 },
			users:          &FakeUserGate{},
			expectedReason: results.FailureValidation,
		},
		{
			name:   "duplicate lookup failure",
			mutate: func(input *SubmitRecordInput) {},
			users:  &FakeUserGate{},
			repoSetup: func(repo *FakeRecordRepository) {
				repo.FindDuplicateFunc = func(ctx context.Context, userID, levelID int64, time, tolerance float64, splits string) (*recorddb.Record, error) {
					return nil, errors.New("connection reset")
				}
			},
			expectedReason: results.FailurePersistence,
		},
		{
			name:   "insert failure",
			mutate: func(input *SubmitRecordInput) {},
			users:  &FakeUserGate{},
			repoSetup: func(repo *FakeRecordRepository) {
				repo.CreateFunc = func(ctx context.Context, record *recorddb.Record, events func(recordID int64) ([]*recorddb.OutboxEvent, error)) (int64, error) {
					return 0, errors.New("constraint violation")
				}
			},
			expectedReason: results.FailurePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRecordRepository()
			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}
			service := newSubmitService(repo, tt.users)

			input := baseInput()
			tt.mutate(&input)

			result, err := service.SubmitRecord(context.Background(), input)
			require.NoError(t, err)
			require.True(t, result.IsFailure())
			assert.Equal(t, tt.expectedReason, result.Failure.Reason)
			assert.Empty(t, repo.All(), "rejected submission must not insert")
			assert.Empty(t, repo.OutboxTopics(), "rejected submission must not enqueue events")
		})
	}
}
