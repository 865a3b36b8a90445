package reservation

import (
	"strings"

	"reservation-engine/internal/pkg/errs"
)

var ErrInvalidStatus = errs.Category(errs.ErrInvalidArgument, "invalid reservation status")

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

// OccupyingStatuses count against a resource's capacity.
var OccupyingStatuses = []Status{StatusConfirmed, StatusCompleted, StatusOverdue}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusOverdue},
	StatusOverdue:   {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", errs.Wrapf(ErrInvalidStatus, "%q", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsOccupying() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusOverdue:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
// Staying in the same state is not an edge; callers treat it as a no-op.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequiresAvailabilityCheck reports whether moving into to adds the reservation to the
// occupying set and therefore has to pass the conflict detector first.
func RequiresAvailabilityCheck(from, to Status) bool {
	return !from.IsOccupying() && to.IsOccupying()
}
