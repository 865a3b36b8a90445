package request

import (
	"strings"
	"time"

	"reservation-engine/internal/usecase/commands"
)

type ReserveRequest struct {
	ResourceID string    `json:"resourceId" binding:"required,max=255"`
	DateFrom   time.Time `json:"dateFrom" binding:"required"`
	DateTo     time.Time `json:"dateTo" binding:"required"`
}

// ToInput binds the request to the authenticated requester. Interval validity is left to
// the use case so every entry point reports it the same way.
func (r ReserveRequest) ToInput(requesterID string) commands.ReserveInput {
	return commands.ReserveInput{
		ResourceID:  strings.TrimSpace(r.ResourceID),
		RequesterID: requesterID,
		DateFrom:    r.DateFrom,
		DateTo:      r.DateTo,
	}
}
