package shared

import (
	"context"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// WithinResource: runs fn inside resourceID's critical section. Waiting for the section
	// honors ctx; once fn starts it runs to completion and its writes commit atomically.
	WithinResource(ctx context.Context, resourceID string, fn func(ctx context.Context, tx Tx) error) error
	// Within: plain transaction for writes that do not touch a resource's occupancy
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: non-authoritative reads used to route a command before it locks anything
	CommandReads() CommandReads
}

type Tx interface {
	Resources() ResourceRepository
	Reservations() ReservationRepository
	Requesters() RequesterRepository
}

type ResourceRepository interface {
	FindByID(ctx context.Context, id string) (*resource.Resource, error)
	// InsertIfAbsent reports false when a resource with the same id already exists.
	InsertIfAbsent(ctx context.Context, res *resource.Resource) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type ReservationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// FindOccupying is the admission hot path: occupying reservations on resourceID whose
	// interval overlaps iv.
	FindOccupying(ctx context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error)
	Create(ctx context.Context, r *reservation.Reservation) error
	// Update persists status, returnedAt and lastUpdatedAt.
	Update(ctx context.Context, r *reservation.Reservation) error
	// FindDueForOverdue lists confirmed reservations on return-requiring resources whose
	// dateTo is at or before now, oldest first.
	FindDueForOverdue(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error)
}

type RequesterRepository interface {
	InsertIfAbsent(ctx context.Context, id, displayName string, now time.Time) (bool, error)
}

type CommandReads interface {
	ReservationByID(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
}

// Minimal snapshot for routing a command to its resource
type ReservationSnapshot struct {
	ID         uuid.UUID
	ResourceID string
	Status     reservation.Status
}

// RequesterDirectory answers whether a requester is known. Existence is checked at
// admission time only.
type RequesterDirectory interface {
	Exists(ctx context.Context, requesterID string) (bool, error)
}

type allowAllRequesters struct{}

// AllowAllRequesters accepts every non-empty requester id.
func AllowAllRequesters() RequesterDirectory {
	return allowAllRequesters{}
}

func (allowAllRequesters) Exists(_ context.Context, requesterID string) (bool, error) {
	return requesterID != "", nil
}
