package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type ResourceRow struct {
	ID             string
	Capacity       int32
	RequiresReturn bool
	Attributes     []byte
	DeletedAt      pgtype.Timestamptz
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type ReservationRow struct {
	ID              pgtype.UUID
	ResourceID      string
	RequesterID     string
	DateFrom        pgtype.Timestamptz
	DateTo          pgtype.Timestamptz
	Status          string
	TotalPriceCents int64
	ReturnedAt      pgtype.Timestamptz
	CreatedAt       pgtype.Timestamptz
	LastUpdatedAt   pgtype.Timestamptz
}

const lockResource = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

const getResource = `-- name: GetResource :one
SELECT id, capacity, requires_return, attributes, deleted_at, created_at, updated_at
FROM resources
WHERE id = $1
`

func (q *Queries) GetResource(ctx context.Context, id string) (ResourceRow, error) {
	row := q.db.QueryRow(ctx, getResource, id)
	var i ResourceRow
	err := row.Scan(
		&i.ID,
		&i.Capacity,
		&i.RequiresReturn,
		&i.Attributes,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertResourceIfAbsent = `-- name: InsertResourceIfAbsent :execrows
INSERT INTO resources (id, capacity, requires_return, attributes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
`

type InsertResourceParams struct {
	ID             string
	Capacity       int32
	RequiresReturn bool
	Attributes     []byte
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) InsertResourceIfAbsent(ctx context.Context, arg InsertResourceParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertResourceIfAbsent,
		arg.ID,
		arg.Capacity,
		arg.RequiresReturn,
		arg.Attributes,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const softDeleteResource = `-- name: SoftDeleteResource :execrows
UPDATE resources
SET deleted_at = COALESCE(deleted_at, $2), updated_at = $2
WHERE id = $1
`

func (q *Queries) SoftDeleteResource(ctx context.Context, id string, at pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, softDeleteResource, id, at)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const reservationColumns = `id, resource_id, requester_id, date_from, date_to, status, total_price_cents, returned_at, created_at, last_updated_at`

const getReservation = `-- name: GetReservation :one
SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1
`

func (q *Queries) GetReservation(ctx context.Context, id pgtype.UUID) (ReservationRow, error) {
	row := q.db.QueryRow(ctx, getReservation, id)
	return scanReservation(row)
}

const listOccupying = `-- name: ListOccupying :many
SELECT ` + reservationColumns + `
FROM reservations
WHERE resource_id = $1
  AND status = ANY($2::text[])
  AND date_from < $4
  AND date_to > $3
ORDER BY date_from, id
`

type ListOccupyingParams struct {
	ResourceID string
	Statuses   []string
	From       pgtype.Timestamptz
	To         pgtype.Timestamptz
}

func (q *Queries) ListOccupying(ctx context.Context, arg ListOccupyingParams) ([]ReservationRow, error) {
	rows, err := q.db.Query(ctx, listOccupying, arg.ResourceID, arg.Statuses, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

const insertReservation = `-- name: InsertReservation :exec
INSERT INTO reservations (` + reservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (q *Queries) InsertReservation(ctx context.Context, arg ReservationRow) error {
	_, err := q.db.Exec(ctx, insertReservation,
		arg.ID,
		arg.ResourceID,
		arg.RequesterID,
		arg.DateFrom,
		arg.DateTo,
		arg.Status,
		arg.TotalPriceCents,
		arg.ReturnedAt,
		arg.CreatedAt,
		arg.LastUpdatedAt,
	)
	return err
}

const updateReservationStatus = `-- name: UpdateReservationStatus :execrows
UPDATE reservations
SET status = $2, returned_at = $3, last_updated_at = $4
WHERE id = $1
`

type UpdateReservationStatusParams struct {
	ID            pgtype.UUID
	Status        string
	ReturnedAt    pgtype.Timestamptz
	LastUpdatedAt pgtype.Timestamptz
}

func (q *Queries) UpdateReservationStatus(ctx context.Context, arg UpdateReservationStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateReservationStatus, arg.ID, arg.Status, arg.ReturnedAt, arg.LastUpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listDueForOverdue = `-- name: ListDueForOverdue :many
SELECT r.id, r.resource_id, r.requester_id, r.date_from, r.date_to, r.status,
       r.total_price_cents, r.returned_at, r.created_at, r.last_updated_at
FROM reservations r
JOIN resources s ON s.id = r.resource_id
WHERE r.status = 'confirmed'
  AND r.returned_at IS NULL
  AND r.date_to <= $1
  AND s.requires_return
ORDER BY r.date_to, r.id
LIMIT $2
`

func (q *Queries) ListDueForOverdue(ctx context.Context, now pgtype.Timestamptz, limit int32) ([]ReservationRow, error) {
	rows, err := q.db.Query(ctx, listDueForOverdue, now, limit)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

const listByResource = `-- name: ListByResource :many
SELECT ` + reservationColumns + `
FROM reservations
WHERE resource_id = $1
  AND ($2::timestamptz IS NULL OR date_to > $2)
  AND ($3::timestamptz IS NULL OR date_from < $3)
ORDER BY date_from, id
LIMIT $4
`

type ListByResourceParams struct {
	ResourceID string
	From       pgtype.Timestamptz
	To         pgtype.Timestamptz
	Limit      int32
}

func (q *Queries) ListByResource(ctx context.Context, arg ListByResourceParams) ([]ReservationRow, error) {
	rows, err := q.db.Query(ctx, listByResource, arg.ResourceID, arg.From, arg.To, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

const insertRequesterIfAbsent = `-- name: InsertRequesterIfAbsent :execrows
INSERT INTO requesters (id, display_name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING
`

func (q *Queries) InsertRequesterIfAbsent(ctx context.Context, id, displayName string, createdAt pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, insertRequesterIfAbsent, id, displayName, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const requesterExists = `-- name: RequesterExists :one
SELECT EXISTS (SELECT 1 FROM requesters WHERE id = $1)
`

func (q *Queries) RequesterExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, requesterExists, id).Scan(&exists)
	return exists, err
}

func scanReservation(row pgx.Row) (ReservationRow, error) {
	var i ReservationRow
	err := row.Scan(
		&i.ID,
		&i.ResourceID,
		&i.RequesterID,
		&i.DateFrom,
		&i.DateTo,
		&i.Status,
		&i.TotalPriceCents,
		&i.ReturnedAt,
		&i.CreatedAt,
		&i.LastUpdatedAt,
	)
	return i, err
}

func collectReservations(rows pgx.Rows) ([]ReservationRow, error) {
	defer rows.Close()
	var items []ReservationRow
	for rows.Next() {
		i, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
