package statsdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// additiveColumns are the counters merged on conflict. The key columns
// (user_id, month, year) are excluded.
var additiveColumns = []string{
	"crash_total", "crash_regular", "crash_eye", "crash_ghost", "crash_sticky",
	"distance_grounded", "distance_in_air", "distance_ragdoll", "distance_braking",
	"distance_arms_up", "distance_on_regular", "distance_on_grass", "distance_on_ice",
	"time_grounded", "time_in_air", "time_ragdoll", "time_braking",
	"time_arms_up", "time_on_regular", "time_on_grass", "time_on_ice",
	"times_started", "times_finished", "wheels_broken", "checkpoints_crossed",
}

// StatsDBImpl is the bun-backed stats repository.
type StatsDBImpl struct {
	DB *bun.DB
}

// Accumulate upserts the monthly row, adding the submitted counters onto
// whatever is already stored.
func (db *StatsDBImpl) Accumulate(ctx context.Context, stat *Stat) error {
	query := db.DB.NewInsert().
		Model(stat).
		On("CONFLICT (user_id, month, year) DO UPDATE")
	for _, column := range additiveColumns {
		query = query.Set(fmt.Sprintf("%s = s.%s + EXCLUDED.%s", column, column, column))
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to accumulate stats for user %d %d-%02d: %w", stat.UserID, stat.Year, stat.Month, err)
	}
	return nil
}

var _ Repository = (*StatsDBImpl)(nil)
