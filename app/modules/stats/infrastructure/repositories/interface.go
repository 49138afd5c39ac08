package statsdb

import "context"

// Repository provides monthly stat persistence.
type Repository interface {
	// Accumulate inserts the stat row or adds its counters onto the
	// existing (user, month, year) row.
	Accumulate(ctx context.Context, stat *Stat) error
}
