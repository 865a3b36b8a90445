package reservation

import (
	"strings"
	"time"

	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errs.Category(errs.ErrInvalidArgument, "invalid reservation status transition")
	ErrEmptyRequesterID  = errs.Category(errs.ErrInvalidArgument, "requester id cannot be empty")
	ErrEmptyResourceRef  = errs.Category(errs.ErrInvalidArgument, "reservation must reference a resource")
)

// seedNamespace scopes deterministic ids derived from imported natural keys.
var seedNamespace = uuid.MustParse("6f1d2c1e-5b7a-4c8e-9a43-0e2b7d9c4f10")

// SeedID derives the reservation id for an imported record so that re-importing the
// same natural key always addresses the same reservation.
func SeedID(naturalKey string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(strings.TrimSpace(naturalKey)))
}

type Reservation struct {
	id            uuid.UUID
	resourceID    string
	requesterID   string
	interval      Interval
	status        Status
	totalPrice    Money
	returnedAt    *time.Time
	createdAt     time.Time
	lastUpdatedAt time.Time
}

// NewReservation creates a reservation in the pending state. It occupies no capacity
// until Confirm succeeds.
func NewReservation(id uuid.UUID, resourceID, requesterID string, interval Interval, price Money, now time.Time) (*Reservation, error) {
	resourceID = strings.TrimSpace(resourceID)
	requesterID = strings.TrimSpace(requesterID)
	if resourceID == "" {
		return nil, ErrEmptyResourceRef
	}
	if requesterID == "" {
		return nil, ErrEmptyRequesterID
	}
	if interval.IsZero() {
		return nil, ErrInvalidInterval
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Reservation{
		id:            id,
		resourceID:    resourceID,
		requesterID:   requesterID,
		interval:      interval,
		status:        StatusPending,
		totalPrice:    price,
		createdAt:     now,
		lastUpdatedAt: now,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	resourceID, requesterID string,
	interval Interval,
	status Status,
	totalPrice Money,
	returnedAt *time.Time,
	createdAt, lastUpdatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:            id,
		resourceID:    resourceID,
		requesterID:   requesterID,
		interval:      interval,
		status:        status,
		totalPrice:    totalPrice,
		returnedAt:    returnedAt,
		createdAt:     createdAt,
		lastUpdatedAt: lastUpdatedAt,
	}
}

// Confirm moves pending -> confirmed. Confirming a confirmed reservation is a no-op.
// The caller must have run the conflict detector inside the resource's critical section.
func (r *Reservation) Confirm(now time.Time) (bool, error) {
	return r.transition(StatusConfirmed, now)
}

// Cancel removes the reservation from the occupying set. Only completed reservations
// cannot be cancelled; cancelling twice is a no-op.
func (r *Reservation) Cancel(now time.Time) (bool, error) {
	return r.transition(StatusCancelled, now)
}

// Complete records the return (or the end of a stay) for a confirmed or overdue reservation.
func (r *Reservation) Complete(now time.Time) (bool, error) {
	changed, err := r.transition(StatusCompleted, now)
	if changed {
		t := now
		r.returnedAt = &t
	}
	return changed, err
}

// MarkOverdueIfDue flips confirmed -> overdue once now >= dateTo on resources that need an
// explicit return. Every other situation is a no-op, never an error.
func (r *Reservation) MarkOverdueIfDue(now time.Time, requiresReturn bool) bool {
	if !r.IsDue(now, requiresReturn) {
		return false
	}
	changed, _ := r.transition(StatusOverdue, now)
	return changed
}

func (r *Reservation) IsDue(now time.Time, requiresReturn bool) bool {
	return requiresReturn &&
		r.status == StatusConfirmed &&
		r.returnedAt == nil &&
		!now.Before(r.interval.To())
}

func (r *Reservation) transition(to Status, now time.Time) (bool, error) {
	if r.status == to {
		return false, nil
	}
	if !CanTransition(r.status, to) {
		return false, errs.Wrapf(ErrInvalidTransition, "%s -> %s", r.status, to)
	}
	r.status = to
	r.lastUpdatedAt = now
	return true, nil
}

func (r *Reservation) IsOccupying() bool {
	return r.status.IsOccupying()
}

// Clone returns an independent copy; stores hand out clones so callers cannot mutate
// state outside a critical section.
func (r *Reservation) Clone() *Reservation {
	cp := *r
	if r.returnedAt != nil {
		t := *r.returnedAt
		cp.returnedAt = &t
	}
	return &cp
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) ResourceID() string       { return r.resourceID }
func (r *Reservation) RequesterID() string      { return r.requesterID }
func (r *Reservation) Interval() Interval       { return r.interval }
func (r *Reservation) DateFrom() time.Time      { return r.interval.From() }
func (r *Reservation) DateTo() time.Time        { return r.interval.To() }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) TotalPrice() Money        { return r.totalPrice }
func (r *Reservation) ReturnedAt() *time.Time   { return r.returnedAt }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) LastUpdatedAt() time.Time { return r.lastUpdatedAt }
