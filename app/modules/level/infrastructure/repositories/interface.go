package leveldb

import "context"

// Repository provides level persistence. GetByUID returns (nil, nil) when no
// row exists so callers can distinguish absence from a read failure.
type Repository interface {
	GetByUID(ctx context.Context, uid string) (*Level, error)
	Create(ctx context.Context, level *Level) (int64, error)
	UpdateThumbnail(ctx context.Context, id int64, url string) error
}
