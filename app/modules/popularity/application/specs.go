package popularityservice

import (
	"time"

	"github.com/raceline-gg/raceline-backend/config"
)

// Cache keys for the three standing variants. Readers of the cached views
// depend on these, so they are fixed rather than configurable.
const (
	CacheKeyDaily   = "levels:popularity:daily"
	CacheKeyWeekly  = "levels:popularity:weekly"
	CacheKeyMonthly = "levels:popularity:monthly"
)

// DailySpec ranks levels by best records over the trailing day.
func DailySpec(cfg config.PopularityConfig) JobSpec {
	return JobSpec{
		Name:        "daily",
		WindowStart: func(now time.Time) time.Time { return now.AddDate(0, 0, -1) },
		Limit:       cfg.DailyLimit,
		CacheKey:    CacheKeyDaily,
	}
}

// WeeklySpec ranks levels by best records over the trailing week.
func WeeklySpec(cfg config.PopularityConfig) JobSpec {
	return JobSpec{
		Name:        "weekly",
		WindowStart: func(now time.Time) time.Time { return now.AddDate(0, 0, -7) },
		Limit:       cfg.WeeklyLimit,
		CacheKey:    CacheKeyWeekly,
	}
}

// MonthlySpec ranks levels by best records over the trailing month.
func MonthlySpec(cfg config.PopularityConfig) JobSpec {
	return JobSpec{
		Name:        "monthly",
		WindowStart: func(now time.Time) time.Time { return now.AddDate(0, -1, 0) },
		Limit:       cfg.MonthlyLimit,
		CacheKey:    CacheKeyMonthly,
	}
}

// SpecByName resolves a variant name to its JobSpec. Used by the queue
// worker to rehydrate the spec from job args.
func SpecByName(name string, cfg config.PopularityConfig) (JobSpec, bool) {
	switch name {
	case "daily":
		return DailySpec(cfg), true
	case "weekly":
		return WeeklySpec(cfg), true
	case "monthly":
		return MonthlySpec(cfg), true
	default:
		return JobSpec{}, false
	}
}
