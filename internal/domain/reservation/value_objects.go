package reservation

import (
	"fmt"
	"time"

	"reservation-engine/internal/pkg/errs"
)

var (
	ErrInvalidInterval = errs.Category(errs.ErrInvalidArgument, "dateFrom must be before dateTo")
	ErrNegativeMoney   = errs.Category(errs.ErrInvalidArgument, "money cannot be negative")
)

// Interval is the half-open span [from, to). Back-to-back intervals do not overlap.
type Interval struct {
	from time.Time
	to   time.Time
}

func NewInterval(from, to time.Time) (Interval, error) {
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{from: from.UTC(), to: to.UTC()}, nil
}

// MustInterval is meant for tests and fixtures.
func MustInterval(from, to time.Time) Interval {
	iv, err := NewInterval(from, to)
	if err != nil {
		panic(fmt.Sprintf("invalid interval [%s,%s)", from, to))
	}
	return iv
}

func (iv Interval) From() time.Time { return iv.from }

func (iv Interval) To() time.Time { return iv.to }

func (iv Interval) Duration() time.Duration {
	return iv.to.Sub(iv.from)
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.from.Before(other.to) && other.from.Before(iv.to)
}

// Contains reports whether instant t lies inside [from, to).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.from) && t.Before(iv.to)
}

func (iv Interval) IsZero() bool {
	return iv.from.IsZero() && iv.to.IsZero()
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s,%s)", iv.from.Format(time.RFC3339), iv.to.Format(time.RFC3339))
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeMoney
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}
