package bundb

import (
	"context"
	"database/sql"
	"fmt"

	communitydb "github.com/raceline-gg/raceline-backend/app/modules/community/infrastructure/repositories"
	leveldb "github.com/raceline-gg/raceline-backend/app/modules/level/infrastructure/repositories"
	popularitydb "github.com/raceline-gg/raceline-backend/app/modules/popularity/infrastructure/repositories"
	recorddb "github.com/raceline-gg/raceline-backend/app/modules/record/infrastructure/repositories"
	statsdb "github.com/raceline-gg/raceline-backend/app/modules/stats/infrastructure/repositories"
	userdb "github.com/raceline-gg/raceline-backend/app/modules/user/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService bundles the bun-backed repositories over one connection pool.
type DBService struct {
	UserDB       *userdb.UserDBImpl
	LevelDB      *leveldb.LevelDBImpl
	RecordDB     *recorddb.RecordDBImpl
	OutboxDB     *recorddb.OutboxDBImpl
	CommunityDB  *communitydb.CommunityDBImpl
	StatsDB      *statsdb.StatsDBImpl
	PopularityDB *popularitydb.PopularityDBImpl
	db           *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres
// configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(&userdb.User{})
	db.RegisterModel(&leveldb.Level{})
	db.RegisterModel(&recorddb.Record{})
	db.RegisterModel(&recorddb.OutboxEvent{})
	db.RegisterModel(&communitydb.Favorite{})
	db.RegisterModel(&communitydb.Upvote{})
	db.RegisterModel(&communitydb.Vote{})
	db.RegisterModel(&statsdb.Stat{})

	return &DBService{
		UserDB:       &userdb.UserDBImpl{DB: db},
		LevelDB:      &leveldb.LevelDBImpl{DB: db},
		RecordDB:     &recorddb.RecordDBImpl{DB: db},
		OutboxDB:     &recorddb.OutboxDBImpl{DB: db},
		CommunityDB:  &communitydb.CommunityDBImpl{DB: db},
		StatsDB:      &statsdb.StatsDBImpl{DB: db},
		PopularityDB: &popularitydb.PopularityDBImpl{DB: db},
		db:           db,
	}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
