package db

import (
	"context"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(cfg config.DBConfig) (*pgxpool.Pool, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.BuildDSN())
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to parse database config")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to open database")
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errs.Wrap(err, "failed to ping database")
	}

	cleanup := func() {
		pool.Close()
	}

	return pool, cleanup, nil
}

// Migrate applies the embedded schema files in name order. Every statement is idempotent,
// so running it against an up-to-date database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return errs.Wrap(err, "failed to list migrations")
	}
	sort.Strings(files)

	for _, file := range files {
		sqlContent, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return errs.Wrapf(err, "failed to read migration %s", file)
		}
		if _, err := pool.Exec(ctx, string(sqlContent)); err != nil {
			return errs.Wrapf(err, "failed to execute migration %s", file)
		}
		slog.Info("migration applied", "file", file)
	}
	return nil
}
