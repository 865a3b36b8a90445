//go:build unit || e2e

package builder

import (
	"time"

	"reservation-engine/internal/domain/resource"
	reqdto "reservation-engine/internal/handler/dto/request"
)

type ResourceBuilder struct {
	ID             string
	Capacity       int
	RequiresReturn bool
	Attributes     map[string]any
	CreatedAt      time.Time
}

func NewResourceBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		ID:         "room-101",
		Capacity:   1,
		Attributes: map[string]any{"price": "100.00", "name": "Harbour view double"},
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (b *ResourceBuilder) With(mutate func(*ResourceBuilder)) *ResourceBuilder {
	mutate(b)
	return b
}

func (b *ResourceBuilder) BuildDomain() *resource.Resource {
	res, err := resource.NewResource(b.ID, b.Capacity, b.RequiresReturn, resource.Attributes(b.Attributes), b.CreatedAt)
	if err != nil {
		panic(err)
	}
	return res
}

func (b *ResourceBuilder) BuildRegisterRequestDTO() reqdto.RegisterResourceRequest {
	return reqdto.RegisterResourceRequest{
		ID:             b.ID,
		Capacity:       b.Capacity,
		RequiresReturn: b.RequiresReturn,
		Attributes:     b.Attributes,
	}
}
