package components

import (
	"context"
	"log/slog"

	"reservation-engine/internal/infra/db"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/infra/pgstore"
	"reservation-engine/internal/infra/sqlitestore"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/usecase/queries"
	"reservation-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
)

// Persistence is the set of ports a store driver serves. All three come from the same
// backing store.
type Persistence struct {
	fx.Out

	UnitOfWork shared.UnitOfWork
	ReadStore  queries.ReadStore
	Requesters shared.RequesterDirectory
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (Persistence, error) {
	logger.Info("opening store", "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := newPostgresPool(lc, cfg)
		if err != nil {
			return Persistence{}, err
		}
		return PostgresPersistence(pool, cfg, logger), nil

	case config.StoreDriverSQLite:
		store, err := sqlitestore.Open(context.Background(), cfg.Store.SQLiteDSN, cfg.Admission.LockWait, logger)
		if err != nil {
			return Persistence{}, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return store.Close()
			},
		})
		return Persistence{
			UnitOfWork: store,
			ReadStore:  store,
			Requesters: requesterDirectory(cfg, store),
		}, nil

	default:
		store := memstore.New(
			memstore.WithLockWait(cfg.Admission.LockWait),
			memstore.WithLogger(logger),
		)
		return Persistence{
			UnitOfWork: store,
			ReadStore:  store,
			Requesters: requesterDirectory(cfg, store),
		}, nil
	}
}

// PostgresPersistence builds the ports over an existing pool. Tests use it to inject a
// containerized database.
func PostgresPersistence(pool *pgxpool.Pool, cfg config.Config, logger *slog.Logger) Persistence {
	reads := pgstore.NewReadStore(pool, logger)
	return Persistence{
		UnitOfWork: pgstore.NewPostgresUoW(pool, cfg.Admission.LockWait, logger),
		ReadStore:  reads,
		Requesters: requesterDirectory(cfg, reads),
	}
}

func newPostgresPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}

func requesterDirectory(cfg config.Config, store shared.RequesterDirectory) shared.RequesterDirectory {
	if !cfg.Admission.VerifyRequesters {
		return shared.AllowAllRequesters()
	}
	return store
}
