// Package availability decides whether a candidate interval fits on a resource given the
// reservations already holding it. Nothing here touches a store.
package availability

import (
	"sort"
	"time"

	"reservation-engine/internal/domain/reservation"

	"github.com/google/uuid"
)

type Decision struct {
	OK       bool
	Capacity int
	// Peak is the largest number of occupying reservations alive at one instant
	// inside the candidate interval. Informational only; admission counts Overlapping.
	Peak int
	// Remaining is capacity minus the number of overlapping reservations, floored at zero.
	Remaining int
	// Overlapping holds every occupying reservation that intersects the candidate.
	Overlapping []*reservation.Reservation
	// Conflicts is Overlapping when the candidate is rejected, nil otherwise.
	Conflicts []*reservation.Reservation
}

// Evaluate runs the conflict check for candidate on a resource of the given capacity.
// The candidate fits when fewer than capacity occupying reservations overlap it.
// exclude (may be uuid.Nil) removes one reservation from consideration, which is how an
// existing reservation is re-validated against everyone else.
func Evaluate(capacity int, candidate reservation.Interval, existing []*reservation.Reservation, exclude uuid.UUID) Decision {
	overlapping := make([]*reservation.Reservation, 0, len(existing))
	for _, r := range existing {
		if r == nil || !r.IsOccupying() {
			continue
		}
		if exclude != uuid.Nil && r.ID() == exclude {
			continue
		}
		if !r.Interval().Overlaps(candidate) {
			continue
		}
		overlapping = append(overlapping, r)
	}

	intervals := make([]reservation.Interval, len(overlapping))
	for i, r := range overlapping {
		intervals[i] = clip(r.Interval(), candidate)
	}
	peak := PeakOccupancy(intervals)

	count := len(overlapping)
	d := Decision{
		OK:          count < capacity,
		Capacity:    capacity,
		Peak:        peak,
		Remaining:   max(capacity-count, 0),
		Overlapping: overlapping,
	}
	if !d.OK {
		d.Conflicts = overlapping
	}
	return d
}

// PeakOccupancy returns the maximum number of intervals covering a single instant.
// Intervals are half-open, so one ending at t and another starting at t never coexist.
func PeakOccupancy(intervals []reservation.Interval) int {
	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, len(intervals)*2)
	for _, iv := range intervals {
		if iv.IsZero() {
			continue
		}
		edges = append(edges, edge{at: iv.From(), delta: 1}, edge{at: iv.To(), delta: -1})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].delta < edges[j].delta
		}
		return edges[i].at.Before(edges[j].at)
	})

	current, peak := 0, 0
	for _, e := range edges {
		current += e.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}

func clip(iv, window reservation.Interval) reservation.Interval {
	from, to := iv.From(), iv.To()
	if from.Before(window.From()) {
		from = window.From()
	}
	if to.After(window.To()) {
		to = window.To()
	}
	return reservation.MustInterval(from, to)
}
