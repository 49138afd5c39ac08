package popularitydb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// PopularityDBImpl is the bun-backed aggregation scan repository.
type PopularityDBImpl struct {
	DB *bun.DB
}

// BestRecordsSince pages through best-flagged records joined to levels.
func (db *PopularityDBImpl) BestRecordsSince(ctx context.Context, since time.Time, offset, limit int) ([]*BestRecordRow, error) {
	var rows []*BestRecordRow
	err := db.DB.NewSelect().
		TableExpr("records AS r").
		Join("JOIN levels AS l ON l.id = r.level_id").
		ColumnExpr("r.id AS record_id").
		ColumnExpr("r.user_id AS record_user_id").
		ColumnExpr("r.time AS record_time").
		ColumnExpr("r.is_wr AS is_wr").
		ColumnExpr("r.date_created AS date_created").
		ColumnExpr("l.id AS level_id").
		ColumnExpr("l.uid AS level_uid").
		ColumnExpr("l.name AS level_name").
		ColumnExpr("l.author AS level_author").
		ColumnExpr("l.thumbnail_url AS level_thumbnail_url").
		Where("r.is_best = TRUE").
		Where("r.date_created >= ?", since).
		OrderExpr("l.id ASC").
		OrderExpr("r.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan best records since %s: %w", since.Format(time.RFC3339), err)
	}
	return rows, nil
}

var _ Repository = (*PopularityDBImpl)(nil)
