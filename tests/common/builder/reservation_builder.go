//go:build unit || e2e

package builder

import (
	"time"

	"reservation-engine/internal/domain/reservation"
	reqdto "reservation-engine/internal/handler/dto/request"
	"reservation-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ID          uuid.UUID
	ResourceID  string
	RequesterID string
	DateFrom    time.Time
	DateTo      time.Time
	Status      reservation.Status
	PriceCents  int64
	ReturnedAt  *time.Time
	CreatedAt   time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	from := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	return &ReservationBuilder{
		ID:          uuid.New(),
		ResourceID:  "room-101",
		RequesterID: "guest-1",
		DateFrom:    from,
		DateTo:      from.Add(72 * time.Hour),
		Status:      reservation.StatusConfirmed,
		PriceCents:  30000,
		CreatedAt:   from.Add(-24 * time.Hour),
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *ReservationBuilder) BuildDomain() *reservation.Reservation {
	price, err := reservation.NewMoney(b.PriceCents)
	if err != nil {
		panic(err)
	}
	return reservation.ReconstructReservation(
		b.ID,
		b.ResourceID,
		b.RequesterID,
		reservation.MustInterval(b.DateFrom, b.DateTo),
		b.Status,
		price,
		b.ReturnedAt,
		b.CreatedAt,
		b.CreatedAt,
	)
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	v := queries.ToReservationView(b.BuildDomain())
	return &v
}

func (b *ReservationBuilder) BuildReserveRequestDTO() reqdto.ReserveRequest {
	return reqdto.ReserveRequest{
		ResourceID: b.ResourceID,
		DateFrom:   b.DateFrom,
		DateTo:     b.DateTo,
	}
}
