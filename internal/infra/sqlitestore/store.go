// Package sqlitestore is the single-file SQLite store. The database has exactly one
// connection, so a transaction is the whole store's critical section; waiting for it
// is waiting for the connection.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"

	errDatabaseLocked = "database is locked"
	errSQLiteBusy     = "SQLITE_BUSY"
	errUniqueFailed   = "UNIQUE constraint failed"
	errForeignKey     = "FOREIGN KEY constraint failed"
)

// Applied through the DSN so they hold for any connection the pool reopens.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

var errLockWaitExceeded = errs.Category(errs.ErrAborted, "timed out waiting for the sqlite connection")

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db       *sql.DB
	lockWait time.Duration
	logger   *slog.Logger
}

// Open opens dsn (for example "file:reservations.db" or "file::memory:") and creates the
// schema if needed. A nil logger falls back to slog.Default.
func Open(ctx context.Context, dsn string, lockWait time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open(driverName, withPragmas(dsn))
	if err != nil {
		return nil, errs.Wrap(err, "failed to open sqlite database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "failed to ping sqlite database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "failed to apply sqlite schema")
	}
	return &Store{db: db, lockWait: lockWait, logger: logger}, nil
}

func withPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) WithinResource(ctx context.Context, _ string, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.runInTx(ctx, fn)
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.runInTx(ctx, fn)
}

func (s *Store) CommandReads() shared.CommandReads {
	return commandReads{q: s.db, logger: s.logger}
}

func (s *Store) runInTx(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	waitCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}

	conn, err := s.db.Conn(waitCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return errLockWaitExceeded
		}
		return classify(s.logger, "failed to acquire connection", err)
	}
	defer conn.Close()

	// database/sql rolls a tx back when its context ends, so the tx gets a detached one.
	bodyCtx := context.WithoutCancel(ctx)
	tx, err := conn.BeginTx(bodyCtx, nil)
	if err != nil {
		return classify(s.logger, "failed to begin transaction", err)
	}

	if err := fn(bodyCtx, &sqliteTx{q: tx, logger: s.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Warn("rollback failed", "error", rbErr.Error())
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(s.logger, "failed to commit transaction", err)
	}
	return nil
}

func classify(logger *slog.Logger, msg string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return infra.WrapRepoErr(logger, msg, err, infra.KindNotFound)
	}
	text := err.Error()
	switch {
	case strings.Contains(text, errDatabaseLocked), strings.Contains(text, errSQLiteBusy):
		return infra.WrapRepoErr(logger, msg, err, infra.KindRetryable)
	case strings.Contains(text, errUniqueFailed):
		return infra.WrapRepoErr(logger, msg, err, infra.KindDuplicateKey)
	case strings.Contains(text, errForeignKey):
		return infra.WrapRepoErr(logger, msg, err, infra.KindNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Mark(errs.Wrap(err, msg), errs.ErrAborted)
	}
	return infra.WrapRepoErr(logger, msg, err)
}

type sqliteTx struct {
	q      dbtx
	logger *slog.Logger
}

func (t *sqliteTx) Resources() shared.ResourceRepository {
	return resourceRepository{q: t.q, logger: t.logger}
}

func (t *sqliteTx) Reservations() shared.ReservationRepository {
	return reservationRepository{q: t.q, logger: t.logger}
}

func (t *sqliteTx) Requesters() shared.RequesterRepository {
	return requesterRepository{q: t.q, logger: t.logger}
}

type commandReads struct {
	q      dbtx
	logger *slog.Logger
}

func (c commandReads) ReservationByID(ctx context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	r, err := reservationRepository{q: c.q, logger: c.logger}.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &shared.ReservationSnapshot{ID: r.ID(), ResourceID: r.ResourceID(), Status: r.Status()}, nil
}
