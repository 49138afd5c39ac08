package userservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	userdb "github.com/raceline-gg/raceline-backend/app/modules/user/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// FakeUserRepository is an in-memory stub for the userdb.Repository
// interface.
type FakeUserRepository struct {
	Users map[int64]*userdb.User

	GetErr    error
	UpdateErr error
}

func (f *FakeUserRepository) GetByID(ctx context.Context, id int64) (*userdb.User, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	user, ok := f.Users[id]
	if !ok {
		return nil, userdb.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *FakeUserRepository) IsBanned(ctx context.Context, id int64) (bool, error) {
	if f.GetErr != nil {
		return false, f.GetErr
	}
	user, ok := f.Users[id]
	return ok && user.Banned, nil
}

func (f *FakeUserRepository) UpdateDiscordID(ctx context.Context, id int64, discordID string) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	user, ok := f.Users[id]
	if !ok {
		return userdb.ErrUserNotFound
	}
	user.DiscordID = &discordID
	return nil
}

var _ userdb.Repository = (*FakeUserRepository)(nil)

func newUserService(repo *FakeUserRepository) *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(repo, logger, metrics.New(prometheus.NewRegistry()), noop.NewTracerProvider().Tracer("test"))
}

func TestUserService_UpdateDiscordID(t *testing.T) {
	repo := &FakeUserRepository{Users: map[int64]*userdb.User{
		1: {ID: 1, SteamID: "7656111", SteamName: "speedy"},
	}}
	service := newUserService(repo)

	result, err := service.UpdateDiscordID(context.Background(), UpdateDiscordInput{CallerID: 1, DiscordID: "123456"})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, int64(1), result.Success.UserID)

	require.NotNil(t, repo.Users[1].DiscordID)
	assert.Equal(t, "123456", *repo.Users[1].DiscordID)
}

func TestUserService_UpdateDiscordIDRejections(t *testing.T) {
	tests := []struct {
		name           string
		input          UpdateDiscordInput
		repo           *FakeUserRepository
		expectedReason results.FailureKind
	}{
		{
			name:           "missing caller identity",
			input:          UpdateDiscordInput{DiscordID: "123456"},
			repo:           &FakeUserRepository{},
			expectedReason: results.FailureAuthentication,
		},
		{
			name:           "empty discord id",
			input:          UpdateDiscordInput{CallerID: 1},
			repo:           &FakeUserRepository{Users: map[int64]*userdb.User{1: {ID: 1}}},
			expectedReason: results.FailureValidation,
		},
		{
			name:           "unknown user",
			input:          UpdateDiscordInput{CallerID: 9, DiscordID: "123456"},
			repo:           &FakeUserRepository{Users: map[int64]*userdb.User{}},
			expectedReason: results.FailureValidation,
		},
		{
			name:           "store failure",
			input:          UpdateDiscordInput{CallerID: 1, DiscordID: "123456"},
			repo:           &FakeUserRepository{UpdateErr: errors.New("connection reset")},
			expectedReason: results.FailurePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newUserService(tt.repo)

			result, err := service.UpdateDiscordID(context.Background(), tt.input)
			require.NoError(t, err)
			require.True(t, result.IsFailure())
			assert.Equal(t, tt.expectedReason, result.Failure.Reason)
		})
	}
}

func TestGate_Exists(t *testing.T) {
	gate := &Gate{Repo: &FakeUserRepository{Users: map[int64]*userdb.User{1: {ID: 1}}}}

	exists, err := gate.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = gate.Exists(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGate_ExistsSurfacesStoreFailure(t *testing.T) {
	gate := &Gate{Repo: &FakeUserRepository{GetErr: errors.New("connection reset")}}

	_, err := gate.Exists(context.Background(), 1)
	require.Error(t, err)
}
