package pgstore

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReadStore serves queries straight from the pool. Reads are consistent snapshots of
// committed state but carry no admission guarantee.
type ReadStore struct {
	q      *Queries
	logger *slog.Logger
}

func NewReadStore(db DBTX, logger *slog.Logger) *ReadStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadStore{q: New(db), logger: logger}
}

func (s *ReadStore) FindResource(ctx context.Context, id string) (*resource.Resource, error) {
	return (&resourceRepository{q: s.q, logger: s.logger}).FindByID(ctx, id)
}

func (s *ReadStore) FindReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return (&reservationRepository{q: s.q, logger: s.logger}).FindByID(ctx, id)
}

func (s *ReadStore) FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	return (&reservationRepository{q: s.q, logger: s.logger}).FindOccupying(ctx, resourceID, iv)
}

func (s *ReadStore) ListByResource(ctx context.Context, resourceID string, window *reservation.Interval, limit int) ([]*reservation.Reservation, error) {
	params := ListByResourceParams{
		ResourceID: resourceID,
		From:       pgtype.Timestamptz{},
		To:         pgtype.Timestamptz{},
		Limit:      clampLimit(limit),
	}
	if window != nil {
		params.From = pgconv.TimeToPgtype(window.From())
		params.To = pgconv.TimeToPgtype(window.To())
	}
	rows, err := s.q.ListByResource(ctx, params)
	if err != nil {
		return nil, classify(s.logger, "failed to list reservations", err)
	}
	out, err := reservationsFromRows(rows)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, "failed to decode reservations", err)
	}
	return out, nil
}

// Exists implements the requester directory on the requesters table.
func (s *ReadStore) Exists(ctx context.Context, requesterID string) (bool, error) {
	ok, err := s.q.RequesterExists(ctx, requesterID)
	if err != nil {
		return false, classify(s.logger, "failed to look up requester", err)
	}
	return ok, nil
}
