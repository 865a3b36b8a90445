// Package pgstore is the Postgres store. A resource's critical section is a transaction
// holding a transaction-scoped advisory lock keyed by the resource id.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/pgconv"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeLockNotAvailable     = "55P03"
	pgErrCodeUniqueViolation      = "23505"
	pgErrCodeForeignKeyViolation  = "23503"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool     *pgxpool.Pool
	q        *Queries
	lockWait time.Duration
	logger   *slog.Logger
}

// NewPostgresUoW: lockWait bounds the wait for a resource's advisory lock through
// lock_timeout; zero waits for the caller's deadline only.
func NewPostgresUoW(pool *pgxpool.Pool, lockWait time.Duration, logger *slog.Logger) *PostgresUoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUoW{
		pool:     pool,
		q:        New(pool),
		lockWait: lockWait,
		logger:   logger,
	}
}

func (u *PostgresUoW) WithinResource(ctx context.Context, resourceID string, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if u.lockWait > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockWait.Milliseconds())
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return classify(u.logger, "failed to set lock timeout", err)
			}
		}
		if _, err := tx.Exec(ctx, lockResource, resourceID); err != nil {
			return classify(u.logger, "failed to acquire resource lock", err)
		}
		return nil
	}, fn)
}

// ReadCommitted: each statement sees rows committed before it started, which inside the
// advisory lock is everything earlier holders wrote.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTx(ctx, nil, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{q: u.q, logger: u.logger}
}

// runInTx waits with ctx until the transaction is open and enter succeeded. From then on
// the body and the commit run detached from ctx cancellation.
func (u *PostgresUoW) runInTx(
	ctx context.Context,
	enter func(ctx context.Context, tx pgx.Tx) error,
	fn func(ctx context.Context, tx shared.Tx) error,
) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(classify(u.logger, "failed to begin transaction", err), errTransactionBegin)
	}

	bodyCtx := context.WithoutCancel(ctx)
	defer func() {
		if rollbackErr := pgxTx.Rollback(bodyCtx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			u.logger.Warn("rollback failed", "error", rollbackErr.Error())
		}
	}()

	if enter != nil {
		if err := enter(ctx, pgxTx); err != nil {
			return err
		}
	}

	if err := fn(bodyCtx, newPgTx(pgxTx, u.logger)); err != nil {
		return err
	}

	if err := pgxTx.Commit(bodyCtx); err != nil {
		return errs.Mark(classify(u.logger, "failed to commit transaction", err), errTransactionCommit)
	}
	return nil
}

// classify maps driver failures to repository kinds. Lock contention and serialization
// failures are retryable; a cancelled wait is reported as Aborted.
func classify(logger *slog.Logger, msg string, err error) error {
	if pgconv.IsNoRows(err) {
		return infra.WrapRepoErr(logger, msg, err, infra.KindNotFound)
	}
	switch pgconv.SQLState(err) {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected, pgErrCodeLockNotAvailable:
		return infra.WrapRepoErr(logger, msg, err, infra.KindRetryable)
	case pgErrCodeUniqueViolation:
		return infra.WrapRepoErr(logger, msg, err, infra.KindDuplicateKey)
	case pgErrCodeForeignKeyViolation:
		return infra.WrapRepoErr(logger, msg, err, infra.KindNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Mark(errs.Wrap(err, msg), errs.ErrAborted)
	}
	return infra.WrapRepoErr(logger, msg, err)
}

type pgTx struct {
	q      *Queries
	logger *slog.Logger

	// Lazy-initialized repositories
	resourceRepo    shared.ResourceRepository
	reservationRepo shared.ReservationRepository
	requesterRepo   shared.RequesterRepository
}

func newPgTx(db DBTX, logger *slog.Logger) *pgTx {
	return &pgTx{q: New(db), logger: logger}
}

func (t *pgTx) Resources() shared.ResourceRepository {
	if t.resourceRepo == nil {
		t.resourceRepo = &resourceRepository{q: t.q, logger: t.logger}
	}
	return t.resourceRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = &reservationRepository{q: t.q, logger: t.logger}
	}
	return t.reservationRepo
}

func (t *pgTx) Requesters() shared.RequesterRepository {
	if t.requesterRepo == nil {
		t.requesterRepo = &requesterRepository{q: t.q, logger: t.logger}
	}
	return t.requesterRepo
}

type commandReads struct {
	q      *Queries
	logger *slog.Logger
}

func (r *commandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	row, err := r.q.GetReservation(ctx, pgconv.UUIDToPgtype(id))
	if err != nil {
		return nil, classify(r.logger, "failed to find reservation", err)
	}
	res, err := reservationFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode reservation", err)
	}
	return &shared.ReservationSnapshot{
		ID:         res.ID(),
		ResourceID: res.ResourceID(),
		Status:     res.Status(),
	}, nil
}
