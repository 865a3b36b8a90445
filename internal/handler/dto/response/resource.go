package response

import (
	"time"

	"reservation-engine/internal/domain/resource"
)

type ResourceResponse struct {
	ID             string         `json:"id"`
	Capacity       int            `json:"capacity"`
	RequiresReturn bool           `json:"requiresReturn"`
	Attributes     map[string]any `json:"attributes"`
	DeletedAt      *time.Time     `json:"deletedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func FromResource(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:             r.ID(),
		Capacity:       r.Capacity(),
		RequiresReturn: r.RequiresReturn(),
		Attributes:     r.Attributes().Clone(),
		DeletedAt:      r.DeletedAt(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}
