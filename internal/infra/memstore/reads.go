package memstore

import (
	"context"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type commandReads struct{ s *Store }

func (c commandReads) ReservationByID(_ context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	r, ok := c.s.reservationByID(id)
	if !ok {
		return nil, c.s.notFound("reservation")
	}
	return &shared.ReservationSnapshot{ID: r.ID(), ResourceID: r.ResourceID(), Status: r.Status()}, nil
}

func (s *Store) FindResource(_ context.Context, id string) (*resource.Resource, error) {
	res, ok := s.resourceByID(id)
	if !ok {
		return nil, s.notFound("resource")
	}
	return res, nil
}

func (s *Store) FindReservation(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	r, ok := s.reservationByID(id)
	if !ok {
		return nil, s.notFound("reservation")
	}
	return r, nil
}

func (s *Store) FindOccupying(_ context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	return s.occupying(resourceID, iv), nil
}

func (s *Store) ListByResource(_ context.Context, resourceID string, window *reservation.Interval, limit int) ([]*reservation.Reservation, error) {
	out := s.reservationsOf(resourceID, func(r *reservation.Reservation) bool {
		return window == nil || r.Interval().Overlaps(*window)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
