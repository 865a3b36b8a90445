package queries

import (
	"context"
	"time"

	"reservation-engine/internal/domain/availability"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrResourceNotFound    = errs.Category(errs.ErrNotFound, "resource not found for query")
	ErrReservationNotFound = errs.Category(errs.ErrNotFound, "reservation not found for query")
)

const defaultListLimit = 200

// ReadStore is served by every store driver. Results may be stale and are never used to
// drive admission.
type ReadStore interface {
	FindResource(ctx context.Context, id string) (*resource.Resource, error)
	FindReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error)
	ListByResource(ctx context.Context, resourceID string, window *reservation.Interval, limit int) ([]*reservation.Reservation, error)
}

type ReservationQueries interface {
	// CheckAvailability is a best-effort pre-flight for Reserve.
	CheckAvailability(ctx context.Context, resourceID string, from, to time.Time, exclude uuid.UUID) (*AvailabilityView, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByResource(ctx context.Context, resourceID string, window *reservation.Interval, limit int) ([]ReservationView, error)
}

type reservationQueriesImpl struct {
	store ReadStore
}

func NewReservationQueries(store ReadStore) ReservationQueries {
	return &reservationQueriesImpl{store: store}
}

func (q *reservationQueriesImpl) CheckAvailability(ctx context.Context, resourceID string, from, to time.Time, exclude uuid.UUID) (*AvailabilityView, error) {
	iv, err := reservation.NewInterval(from, to)
	if err != nil {
		return nil, err
	}

	res, err := q.store.FindResource(ctx, resourceID)
	if err != nil {
		return nil, mapNotFound(err, ErrResourceNotFound)
	}
	if err := res.AcceptsReservations(); err != nil {
		return nil, err
	}

	existing, err := q.store.FindOccupying(ctx, res.ID(), iv)
	if err != nil {
		return nil, err
	}
	d := availability.Evaluate(res.Capacity(), iv, existing, exclude)

	view := &AvailabilityView{
		ResourceID: res.ID(),
		DateFrom:   iv.From(),
		DateTo:     iv.To(),
		Available:  d.OK,
		Capacity:   d.Capacity,
		Peak:       d.Peak,
		Remaining:  d.Remaining,
		Conflicts:  make([]ReservationView, 0, len(d.Conflicts)),
	}
	for _, c := range d.Conflicts {
		view.Conflicts = append(view.Conflicts, ToReservationView(c))
	}
	return view, nil
}

func (q *reservationQueriesImpl) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	r, err := q.store.FindReservation(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReservationNotFound)
	}
	view := ToReservationView(r)
	return &view, nil
}

func (q *reservationQueriesImpl) ListByResource(ctx context.Context, resourceID string, window *reservation.Interval, limit int) ([]ReservationView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if _, err := q.store.FindResource(ctx, resourceID); err != nil {
		return nil, mapNotFound(err, ErrResourceNotFound)
	}

	rows, err := q.store.ListByResource(ctx, resourceID, window, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ReservationView, len(rows))
	for i, r := range rows {
		out[i] = ToReservationView(r)
	}
	return out, nil
}

func mapNotFound(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}
