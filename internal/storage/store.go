// Package storage picks the review store named by configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/shared"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/memory"
	mysqlrepo "github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/mysql"
	pgrepo "github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/postgres"
)

// Store is an open review store plus its schema and shutdown hooks.
type Store struct {
	domain.ReviewRepository
	migrate func(context.Context) error
	close   func() error
}

// Migrate brings the schema up to date. A no-op for the memory store.
func (s *Store) Migrate(ctx context.Context) error { return s.migrate(ctx) }

func (s *Store) Close() error { return s.close() }

// Open connects to cfg.DBDriver and verifies the connection.
func Open(ctx context.Context, cfg shared.Config) (*Store, error) {
	switch cfg.DBDriver {
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("mysql open: %w", err)
		}
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mysql ping: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")
		return &Store{
			ReviewRepository: mysqlrepo.New(db),
			migrate:          func(ctx context.Context) error { return mysqlrepo.Migrate(ctx, db) },
			close:            db.Close,
		}, nil

	case shared.DriverPostgres:
		gdb, err := pgrepo.Open(cfg.PostgresDSN, cfg.DBMaxOpenConns)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		repo := pgrepo.New(gdb)
		if err := repo.Ping(ctx); err != nil {
			closeGorm(gdb)
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")
		return &Store{
			ReviewRepository: repo,
			migrate:          func(ctx context.Context) error { return pgrepo.Migrate(ctx, gdb) },
			close:            func() error { closeGorm(gdb); return nil },
		}, nil

	case shared.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return &Store{
			ReviewRepository: memory.New(),
			migrate:          func(context.Context) error { return nil },
			close:            func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
