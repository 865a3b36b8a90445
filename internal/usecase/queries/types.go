package queries

import (
	"time"

	"reservation-engine/internal/domain/reservation"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ReservationView struct {
	ID            uuid.UUID  `json:"id"`
	ResourceID    string     `json:"resource_id"`
	RequesterID   string     `json:"requester_id"`
	DateFrom      time.Time  `json:"date_from"`
	DateTo        time.Time  `json:"date_to"`
	Status        string     `json:"status"`
	TotalPrice    int64      `json:"total_price_cents"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

type AvailabilityView struct {
	ResourceID string    `json:"resource_id"`
	DateFrom   time.Time `json:"date_from"`
	DateTo     time.Time `json:"date_to"`
	Available  bool      `json:"available"`
	Capacity   int       `json:"capacity"`
	Peak       int       `json:"peak"`
	Remaining  int       `json:"remaining"`
	// Conflicts is populated only when Available is false.
	Conflicts []ReservationView `json:"conflicts"`
}

func ToReservationView(r *reservation.Reservation) ReservationView {
	return ReservationView{
		ID:            r.ID(),
		ResourceID:    r.ResourceID(),
		RequesterID:   r.RequesterID(),
		DateFrom:      r.DateFrom(),
		DateTo:        r.DateTo(),
		Status:        r.Status().String(),
		TotalPrice:    r.TotalPrice().Cents(),
		ReturnedAt:    r.ReturnedAt(),
		CreatedAt:     r.CreatedAt(),
		LastUpdatedAt: r.LastUpdatedAt(),
	}
}
