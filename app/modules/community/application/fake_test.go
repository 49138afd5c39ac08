package communityservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	communitydb "github.com/raceline-gg/raceline-backend/app/modules/community/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
)

// FakeCommunityRepository is an in-memory, programmable stub for the
// communitydb.Repository interface.
type FakeCommunityRepository struct {
	mu        sync.Mutex
	favorites []*communitydb.Favorite
	upvotes   []*communitydb.Upvote
	votes     []*communitydb.VoteRow
	nextID    int64

	FindFavoriteErr   error
	CreateFavoriteErr error
	FindUpvoteErr     error
	CreateUpvoteErr   error
	ListVotesErr      error
}

func NewFakeCommunityRepository() *FakeCommunityRepository {
	return &FakeCommunityRepository{nextID: 1}
}

func (f *FakeCommunityRepository) SeedVotes(rows ...*communitydb.VoteRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, rows...)
}

func (f *FakeCommunityRepository) Favorites() []*communitydb.Favorite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*communitydb.Favorite, len(f.favorites))
	copy(out, f.favorites)
	return out
}

func (f *FakeCommunityRepository) Upvotes() []*communitydb.Upvote {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*communitydb.Upvote, len(f.upvotes))
	copy(out, f.upvotes)
	return out
}

func (f *FakeCommunityRepository) FindFavorite(ctx context.Context, userID, levelID int64) (*communitydb.Favorite, error) {
	if f.FindFavoriteErr != nil {
		return nil, f.FindFavoriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, favorite := range f.favorites {
		if favorite.UserID == userID && favorite.LevelID == levelID {
			copied := *favorite
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *FakeCommunityRepository) CreateFavorite(ctx context.Context, favorite *communitydb.Favorite) (int64, error) {
	if f.CreateFavoriteErr != nil {
		return 0, f.CreateFavoriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	favorite.ID = f.nextID
	f.nextID++
	copied := *favorite
	f.favorites = append(f.favorites, &copied)
	return favorite.ID, nil
}

func (f *FakeCommunityRepository) FindUpvote(ctx context.Context, userID, levelID int64) (*communitydb.Upvote, error) {
	if f.FindUpvoteErr != nil {
		return nil, f.FindUpvoteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, upvote := range f.upvotes {
		if upvote.UserID == userID && upvote.LevelID == levelID {
			copied := *upvote
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *FakeCommunityRepository) CreateUpvote(ctx context.Context, upvote *communitydb.Upvote) (int64, error) {
	if f.CreateUpvoteErr != nil {
		return 0, f.CreateUpvoteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	upvote.ID = f.nextID
	f.nextID++
	copied := *upvote
	f.upvotes = append(f.upvotes, &copied)
	return upvote.ID, nil
}

func (f *FakeCommunityRepository) ListVotes(ctx context.Context, filter communitydb.VoteFilter) ([]*communitydb.VoteRow, int, error) {
	if f.ListVotesErr != nil {
		return nil, 0, f.ListVotesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*communitydb.VoteRow
	for _, row := range f.votes {
		if filter.UserID != nil && row.UserID != *filter.UserID {
			continue
		}
		if filter.SteamID != "" && row.UserSteamID != filter.SteamID {
			continue
		}
		if filter.LevelID != nil && row.LevelID != *filter.LevelID {
			continue
		}
		matched = append(matched, row)
	}

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	page := make([]*communitydb.VoteRow, end-filter.Offset)
	copy(page, matched[filter.Offset:end])
	return page, total, nil
}

var _ communitydb.Repository = (*FakeCommunityRepository)(nil)

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
