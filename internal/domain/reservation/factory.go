package reservation

import (
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator) *Factory {
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
	}
}

// CreatePending prices the request and returns a pending reservation on res.
func (f *Factory) CreatePending(res *resource.Resource, requesterID string, interval Interval) (*Reservation, error) {
	return f.create(uuid.New(), res, requesterID, interval)
}

// CreateWithID is used by imports, which carry their own deterministic ids.
func (f *Factory) CreateWithID(id uuid.UUID, res *resource.Resource, requesterID string, interval Interval) (*Reservation, error) {
	return f.create(id, res, requesterID, interval)
}

func (f *Factory) create(id uuid.UUID, res *resource.Resource, requesterID string, interval Interval) (*Reservation, error) {
	price, err := f.PriceCalculator.CalculatePrice(res, interval)
	if err != nil {
		return nil, err
	}
	return NewReservation(id, res.ID(), requesterID, interval, price, f.Clock.Now())
}
