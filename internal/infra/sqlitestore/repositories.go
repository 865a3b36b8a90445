package sqlitestore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

const reservationColumns = `id, resource_id, requester_id, date_from, date_to, status, total_price_cents, returned_at, created_at, last_updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullableNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toNanos(*t), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

type resourceRepository struct {
	q      dbtx
	logger *slog.Logger
}

func (r resourceRepository) FindByID(ctx context.Context, id string) (*resource.Resource, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, capacity, requires_return, attributes, deleted_at, created_at, updated_at
		FROM resources WHERE id = ?`, id)

	var (
		rid            string
		capacity       int
		requiresReturn bool
		attrsJSON      string
		deletedAt      sql.NullInt64
		createdAt      int64
		updatedAt      int64
	)
	if err := row.Scan(&rid, &capacity, &requiresReturn, &attrsJSON, &deletedAt, &createdAt, &updatedAt); err != nil {
		return nil, classify(r.logger, "failed to find resource", err)
	}

	attrs := resource.Attributes{}
	dec := json.NewDecoder(bytes.NewReader([]byte(attrsJSON)))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode resource attributes", err)
	}
	return resource.ReconstructResource(
		rid, capacity, requiresReturn, attrs,
		timePtr(deletedAt), fromNanos(createdAt), fromNanos(updatedAt),
	), nil
}

func (r resourceRepository) InsertIfAbsent(ctx context.Context, res *resource.Resource) (bool, error) {
	attrs, err := json.Marshal(res.Attributes().Clone())
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, "failed to encode resource attributes", err)
	}
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO resources (id, capacity, requires_return, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		res.ID(), res.Capacity(), res.RequiresReturn(), string(attrs),
		toNanos(res.CreatedAt()), toNanos(res.UpdatedAt()),
	)
	if err != nil {
		return false, classify(r.logger, "failed to insert resource", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, classify(r.logger, "failed to insert resource", err)
	}
	return n == 1, nil
}

func (r resourceRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE resources SET deleted_at = COALESCE(deleted_at, ?), updated_at = ?
		WHERE id = ?`, toNanos(at), toNanos(at), id)
	if err != nil {
		return classify(r.logger, "failed to soft delete resource", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return classify(r.logger, "failed to soft delete resource", err)
	} else if n == 0 {
		return infra.WrapRepoErr(r.logger, "resource not found", nil, infra.KindNotFound)
	}
	return nil
}

type reservationRepository struct {
	q      dbtx
	logger *slog.Logger
}

func scanReservation(row scanner) (*reservation.Reservation, error) {
	var (
		id, resourceID, requesterID, status string
		from, to, createdAt, updatedAt      int64
		price                               int64
		returnedAt                          sql.NullInt64
	)
	if err := row.Scan(&id, &resourceID, &requesterID, &from, &to, &status, &price, &returnedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.Wrapf(err, "stored reservation id %q", id)
	}
	iv, err := reservation.NewInterval(fromNanos(from), fromNanos(to))
	if err != nil {
		return nil, err
	}
	st, err := reservation.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	money, err := reservation.NewMoney(price)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		rid, resourceID, requesterID, iv, st, money,
		timePtr(returnedAt), fromNanos(createdAt), fromNanos(updatedAt),
	), nil
}

func (r reservationRepository) list(ctx context.Context, msg, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(r.logger, msg, err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, msg, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.logger, msg, err)
	}
	return out, nil
}

func (r reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id.String())
	res, err := scanReservation(row)
	if err != nil {
		return nil, classify(r.logger, "failed to find reservation", err)
	}
	return res, nil
}

func (r reservationRepository) FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	return r.list(ctx, "failed to list occupying reservations", `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE resource_id = ?
		  AND status IN ('confirmed', 'completed', 'overdue')
		  AND date_from < ?
		  AND date_to > ?
		ORDER BY date_from, id`,
		resourceID, toNanos(iv.To()), toNanos(iv.From()),
	)
}

func (r reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID().String(), res.ResourceID(), res.RequesterID(),
		toNanos(res.DateFrom()), toNanos(res.DateTo()), res.Status().String(),
		res.TotalPrice().Cents(), nullableNanos(res.ReturnedAt()),
		toNanos(res.CreatedAt()), toNanos(res.LastUpdatedAt()),
	)
	if err != nil {
		return classify(r.logger, "failed to create reservation", err)
	}
	return nil
}

func (r reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE reservations SET status = ?, returned_at = ?, last_updated_at = ?
		WHERE id = ?`,
		res.Status().String(), nullableNanos(res.ReturnedAt()), toNanos(res.LastUpdatedAt()), res.ID().String(),
	)
	if err != nil {
		return classify(r.logger, "failed to update reservation", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return classify(r.logger, "failed to update reservation", err)
	} else if n == 0 {
		return infra.WrapRepoErr(r.logger, "reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r reservationRepository) FindDueForOverdue(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.list(ctx, "failed to list due reservations", `
		SELECT r.id, r.resource_id, r.requester_id, r.date_from, r.date_to, r.status,
		       r.total_price_cents, r.returned_at, r.created_at, r.last_updated_at
		FROM reservations r
		JOIN resources s ON s.id = r.resource_id
		WHERE r.status = 'confirmed'
		  AND r.returned_at IS NULL
		  AND r.date_to <= ?
		  AND s.requires_return = 1
		ORDER BY r.date_to, r.id
		LIMIT ?`,
		toNanos(now), limit,
	)
}

type requesterRepository struct {
	q      dbtx
	logger *slog.Logger
}

func (r requesterRepository) InsertIfAbsent(ctx context.Context, id, displayName string, now time.Time) (bool, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO requesters (id, display_name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`, id, displayName, toNanos(now))
	if err != nil {
		return false, classify(r.logger, "failed to insert requester", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, classify(r.logger, "failed to insert requester", err)
	}
	return n == 1, nil
}
