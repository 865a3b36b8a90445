package request

import (
	"strings"
	"time"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/usecase/commands"
)

type RegisterResourceRequest struct {
	ID             string         `json:"id" binding:"required,max=255"`
	Capacity       int            `json:"capacity" binding:"required,min=1"`
	RequiresReturn bool           `json:"requiresReturn"`
	Attributes     map[string]any `json:"attributes"`
}

func (r RegisterResourceRequest) ToInput() commands.RegisterResourceInput {
	return commands.RegisterResourceInput{
		ID:             strings.TrimSpace(r.ID),
		Capacity:       r.Capacity,
		RequiresReturn: r.RequiresReturn,
		Attributes:     resource.Attributes(r.Attributes),
	}
}

// AvailabilityQuery: times are RFC 3339.
type AvailabilityQuery struct {
	From    time.Time `form:"from" binding:"required"`
	To      time.Time `form:"to" binding:"required"`
	Exclude string    `form:"exclude" binding:"omitempty,uuid"`
}

type ListReservationsQuery struct {
	From  *time.Time `form:"from"`
	To    *time.Time `form:"to"`
	Limit int        `form:"limit" binding:"omitempty,min=1,max=1000"`
}
