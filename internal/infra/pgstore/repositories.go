package pgstore

import (
	"context"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type resourceRepository struct {
	q      *Queries
	logger *slog.Logger
}

func (r *resourceRepository) FindByID(ctx context.Context, id string) (*resource.Resource, error) {
	row, err := r.q.GetResource(ctx, id)
	if err != nil {
		return nil, classify(r.logger, "failed to find resource", err)
	}
	res, err := resourceFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode resource", err)
	}
	return res, nil
}

func (r *resourceRepository) InsertIfAbsent(ctx context.Context, res *resource.Resource) (bool, error) {
	params, err := resourceToParams(res)
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, "failed to encode resource", err)
	}
	n, err := r.q.InsertResourceIfAbsent(ctx, params)
	if err != nil {
		return false, classify(r.logger, "failed to insert resource", err)
	}
	return n == 1, nil
}

func (r *resourceRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.SoftDeleteResource(ctx, id, pgconv.TimeToPgtype(at))
	if err != nil {
		return classify(r.logger, "failed to soft delete resource", err)
	}
	if n == 0 {
		return infra.WrapRepoErr(r.logger, "resource not found", nil, infra.KindNotFound)
	}
	return nil
}

type reservationRepository struct {
	q      *Queries
	logger *slog.Logger
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row, err := r.q.GetReservation(ctx, pgconv.UUIDToPgtype(id))
	if err != nil {
		return nil, classify(r.logger, "failed to find reservation", err)
	}
	res, err := reservationFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode reservation", err)
	}
	return res, nil
}

func (r *reservationRepository) FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	rows, err := r.q.ListOccupying(ctx, ListOccupyingParams{
		ResourceID: resourceID,
		Statuses:   occupyingStatuses(),
		From:       pgconv.TimeToPgtype(iv.From()),
		To:         pgconv.TimeToPgtype(iv.To()),
	})
	if err != nil {
		return nil, classify(r.logger, "failed to list occupying reservations", err)
	}
	out, err := reservationsFromRows(rows)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode reservations", err)
	}
	return out, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	if err := r.q.InsertReservation(ctx, reservationToRow(res)); err != nil {
		return classify(r.logger, "failed to create reservation", err)
	}
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	n, err := r.q.UpdateReservationStatus(ctx, UpdateReservationStatusParams{
		ID:            pgconv.UUIDToPgtype(res.ID()),
		Status:        res.Status().String(),
		ReturnedAt:    pgconv.TimePtrToPgtype(res.ReturnedAt()),
		LastUpdatedAt: pgconv.TimeToPgtype(res.LastUpdatedAt()),
	})
	if err != nil {
		return classify(r.logger, "failed to update reservation", err)
	}
	if n == 0 {
		return infra.WrapRepoErr(r.logger, "reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *reservationRepository) FindDueForOverdue(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	rows, err := r.q.ListDueForOverdue(ctx, pgconv.TimeToPgtype(now), clampLimit(limit))
	if err != nil {
		return nil, classify(r.logger, "failed to list due reservations", err)
	}
	out, err := reservationsFromRows(rows)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "failed to decode reservations", err)
	}
	return out, nil
}

type requesterRepository struct {
	q      *Queries
	logger *slog.Logger
}

func (r *requesterRepository) InsertIfAbsent(ctx context.Context, id, displayName string, now time.Time) (bool, error) {
	n, err := r.q.InsertRequesterIfAbsent(ctx, id, displayName, pgconv.TimeToPgtype(now))
	if err != nil {
		return false, classify(r.logger, "failed to insert requester", err)
	}
	return n == 1, nil
}

const maxListLimit = 10000

func clampLimit(limit int) int32 {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return int32(limit) // #nosec G115 -- bounded above
}
