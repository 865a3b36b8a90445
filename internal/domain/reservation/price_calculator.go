package reservation

import (
	"math"
	"time"

	"reservation-engine/internal/domain/resource"
)

const DefaultPriceAttribute = "price"

type PriceCalculator interface {
	CalculatePrice(res *resource.Resource, interval Interval) (Money, error)
}

// DefaultPriceCalculator charges the resource's unit price for every started Unit.
// Resources without a price attribute are free.
type DefaultPriceCalculator struct {
	Attribute string
	Unit      time.Duration
}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{
		Attribute: DefaultPriceAttribute,
		Unit:      24 * time.Hour, // nightly rate
	}
}

func (pc *DefaultPriceCalculator) CalculatePrice(res *resource.Resource, interval Interval) (Money, error) {
	rate, ok, err := res.Attributes().PriceCents(pc.Attribute)
	if err != nil {
		return Money{}, err
	}
	if !ok {
		return Money{}, nil
	}

	unit := pc.Unit
	if unit <= 0 {
		unit = 24 * time.Hour
	}
	units := int64(math.Ceil(float64(interval.Duration()) / float64(unit)))
	return NewMoney(rate * units)
}
