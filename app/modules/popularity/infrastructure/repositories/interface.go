package popularitydb

import (
	"context"
	"time"
)

// Repository provides the aggregation scan over best-flagged records.
type Repository interface {
	// BestRecordsSince returns one page of best-flagged records created at
	// or after the given instant, joined to their levels and ordered by
	// level id then record id so rows for one level arrive together.
	BestRecordsSince(ctx context.Context, since time.Time, offset, limit int) ([]*BestRecordRow, error)
}
