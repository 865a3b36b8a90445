package sqlitestore

import (
	"context"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"

	"github.com/google/uuid"
)

func (s *Store) FindResource(ctx context.Context, id string) (*resource.Resource, error) {
	return resourceRepository{q: s.db, logger: s.logger}.FindByID(ctx, id)
}

func (s *Store) FindReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return reservationRepository{q: s.db, logger: s.logger}.FindByID(ctx, id)
}

func (s *Store) FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	return reservationRepository{q: s.db, logger: s.logger}.FindOccupying(ctx, resourceID, iv)
}

func (s *Store) ListByResource(ctx context.Context, resourceID string, window *reservation.Interval, limit int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE resource_id = ?`
	args := []any{resourceID}
	if window != nil {
		query += ` AND date_to > ? AND date_from < ?`
		args = append(args, toNanos(window.From()), toNanos(window.To()))
	}
	query += ` ORDER BY date_from, id LIMIT ?`
	args = append(args, limit)
	return reservationRepository{q: s.db, logger: s.logger}.list(ctx, "failed to list reservations", query, args...)
}

// Exists implements the requester directory on the requesters table.
func (s *Store) Exists(ctx context.Context, requesterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM requesters WHERE id = ?)`, requesterID).Scan(&exists)
	if err != nil {
		return false, classify(s.logger, "failed to look up requester", err)
	}
	return exists, nil
}
