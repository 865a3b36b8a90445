package response

import (
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	ResourceID      string     `json:"resourceId"`
	RequesterID     string     `json:"requesterId"`
	DateFrom        time.Time  `json:"dateFrom"`
	DateTo          time.Time  `json:"dateTo"`
	Status          string     `json:"status"`
	TotalPriceCents int64      `json:"totalPriceCents"`
	ReturnedAt      *time.Time `json:"returnedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUpdatedAt   time.Time  `json:"lastUpdatedAt"`
}

type TransitionResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Changed     bool                `json:"changed"`
}

type AvailabilityResponse struct {
	ResourceID string                `json:"resourceId"`
	DateFrom   time.Time             `json:"dateFrom"`
	DateTo     time.Time             `json:"dateTo"`
	Available  bool                  `json:"available"`
	Capacity   int                   `json:"capacity"`
	Peak       int                   `json:"peak"`
	Remaining  int                   `json:"remaining"`
	Conflicts  []ReservationResponse `json:"conflicts"`
}

// CapacityConflictDetail accompanies a 409 from an admission attempt.
type CapacityConflictDetail struct {
	ResourceID string      `json:"resourceId"`
	Capacity   int         `json:"capacity"`
	Peak       int         `json:"peak"`
	Conflicts  []uuid.UUID `json:"conflicts"`
}

func FromReservationView(v queries.ReservationView) ReservationResponse {
	return ReservationResponse{
		ID:              v.ID,
		ResourceID:      v.ResourceID,
		RequesterID:     v.RequesterID,
		DateFrom:        v.DateFrom,
		DateTo:          v.DateTo,
		Status:          v.Status,
		TotalPriceCents: v.TotalPrice,
		ReturnedAt:      v.ReturnedAt,
		CreatedAt:       v.CreatedAt,
		LastUpdatedAt:   v.LastUpdatedAt,
	}
}

func FromReservation(r *reservation.Reservation) ReservationResponse {
	return FromReservationView(queries.ToReservationView(r))
}

func FromReservationViews(vs []queries.ReservationView) []ReservationResponse {
	out := make([]ReservationResponse, len(vs))
	for i, v := range vs {
		out[i] = FromReservationView(v)
	}
	return out
}

func FromTransitionResult(r *commands.TransitionResult) TransitionResponse {
	return TransitionResponse{
		Reservation: FromReservation(r.Reservation),
		Changed:     r.Changed,
	}
}

func FromAvailabilityView(v *queries.AvailabilityView) AvailabilityResponse {
	return AvailabilityResponse{
		ResourceID: v.ResourceID,
		DateFrom:   v.DateFrom,
		DateTo:     v.DateTo,
		Available:  v.Available,
		Capacity:   v.Capacity,
		Peak:       v.Peak,
		Remaining:  v.Remaining,
		Conflicts:  FromReservationViews(v.Conflicts),
	}
}

func FromCapacityExceeded(e *commands.CapacityExceededError) CapacityConflictDetail {
	return CapacityConflictDetail{
		ResourceID: e.ResourceID,
		Capacity:   e.Capacity,
		Peak:       e.Peak,
		Conflicts:  e.Conflicts,
	}
}
