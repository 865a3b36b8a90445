package commands

import (
	"fmt"
	"strings"

	"reservation-engine/internal/domain/availability"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrResourceNotFound    = errs.Category(errs.ErrNotFound, "resource not found")
	ErrRequesterNotFound   = errs.Category(errs.ErrNotFound, "requester not found")
	ErrReservationNotFound = errs.Category(errs.ErrNotFound, "reservation not found")
	ErrCapacityExceeded    = errs.Category(errs.ErrConflict, "resource capacity exceeded")
)

// CapacityExceededError is the Conflict outcome of an admission attempt. It names the
// occupying reservations the candidate collided with.
type CapacityExceededError struct {
	ResourceID string
	Interval   reservation.Interval
	Capacity   int
	Peak       int
	Conflicts  []uuid.UUID
}

func newCapacityExceeded(resourceID string, iv reservation.Interval, d availability.Decision) *CapacityExceededError {
	ids := make([]uuid.UUID, len(d.Conflicts))
	for i, r := range d.Conflicts {
		ids[i] = r.ID()
	}
	return &CapacityExceededError{
		ResourceID: resourceID,
		Interval:   iv,
		Capacity:   d.Capacity,
		Peak:       d.Peak,
		Conflicts:  ids,
	}
}

func (e *CapacityExceededError) Error() string {
	ids := make([]string, len(e.Conflicts))
	for i, id := range e.Conflicts {
		ids[i] = id.String()
	}
	return fmt.Sprintf("resource capacity exceeded: %s %s (capacity %d, conflicts [%s])",
		e.ResourceID, e.Interval, e.Capacity, strings.Join(ids, ","))
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded || target == errs.ErrConflict
}
