package resource

import (
	"strings"
	"time"

	"reservation-engine/internal/pkg/errs"
)

var (
	ErrEmptyResourceID    = errs.Category(errs.ErrInvalidArgument, "resource id cannot be empty")
	ErrResourceIDTooLong  = errs.Category(errs.ErrInvalidArgument, "resource id is too long (max 255 characters)")
	ErrInvalidCapacity    = errs.Category(errs.ErrInvalidArgument, "resource capacity must be a positive integer")
	ErrResourceDeleted    = errs.Category(errs.ErrNotFound, "resource has been deleted")
	ErrInvalidPriceFormat = errs.Category(errs.ErrInvalidArgument, "resource price attribute is not a non-negative number")
)

const (
	MaxResourceIDLength = 255
	// ExclusiveCapacity is the capacity of a room, a single book copy or an appointment slot.
	ExclusiveCapacity = 1
)

// Resource is a bookable entity with a fixed number of concurrent occupants.
type Resource struct {
	id             string
	capacity       int
	requiresReturn bool
	attributes     Attributes
	deletedAt      *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewResource(id string, capacity int, requiresReturn bool, attrs Attributes, now time.Time) (*Resource, error) {
	id = strings.TrimSpace(id)
	if err := validateResourceID(id); err != nil {
		return nil, err
	}
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	return &Resource{
		id:             id,
		capacity:       capacity,
		requiresReturn: requiresReturn,
		attributes:     attrs.Clone(),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructResource(
	id string,
	capacity int,
	requiresReturn bool,
	attrs Attributes,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Resource {
	return &Resource{
		id:             id,
		capacity:       capacity,
		requiresReturn: requiresReturn,
		attributes:     attrs,
		deletedAt:      deletedAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// SoftDelete keeps historical reservations valid while rejecting new ones.
// Deleting an already deleted resource keeps the original timestamp.
func (r *Resource) SoftDelete(now time.Time) {
	if r.deletedAt != nil {
		return
	}
	t := now
	r.deletedAt = &t
	r.updatedAt = now
}

func (r *Resource) IsDeleted() bool {
	return r.deletedAt != nil
}

// AcceptsReservations reports whether new reservations may be admitted.
func (r *Resource) AcceptsReservations() error {
	if r.IsDeleted() {
		return ErrResourceDeleted
	}
	return nil
}

func (r *Resource) IsExclusive() bool {
	return r.capacity == ExclusiveCapacity
}

func validateResourceID(id string) error {
	if id == "" {
		return ErrEmptyResourceID
	}
	if len(id) > MaxResourceIDLength {
		return ErrResourceIDTooLong
	}
	return nil
}

func validateCapacity(capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

func (r *Resource) ID() string             { return r.id }
func (r *Resource) Capacity() int          { return r.capacity }
func (r *Resource) RequiresReturn() bool   { return r.requiresReturn }
func (r *Resource) Attributes() Attributes { return r.attributes }
func (r *Resource) DeletedAt() *time.Time  { return r.deletedAt }
func (r *Resource) CreatedAt() time.Time   { return r.createdAt }
func (r *Resource) UpdatedAt() time.Time   { return r.updatedAt }
