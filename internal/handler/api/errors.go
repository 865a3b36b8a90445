package api

import (
	"errors"
	"net/http"

	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidRequest   = errors.New("invalid request")
	errMissingRequester = errors.New("requester missing from context")
)

// respondError writes the category-mapped status for a use-case error.
func respondError(c *gin.Context, err error) {
	status := httperr.StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		httperr.AbortWithError(c, status, err, "Internal server error", nil)
	case http.StatusServiceUnavailable:
		httperr.AbortWithError(c, status, err, "Resource is busy, retry later", nil)
	case http.StatusNotFound:
		httperr.AbortWithError(c, status, err, notFoundMessage(err), nil)
	case http.StatusConflict:
		var capErr *commands.CapacityExceededError
		if errors.As(err, &capErr) {
			httperr.AbortWithError(c, status, err, "Resource capacity exceeded for the requested interval", resdto.FromCapacityExceeded(capErr))
			return
		}
		httperr.AbortWithError(c, status, err, err.Error(), nil)
	default:
		httperr.AbortWithError(c, status, err, err.Error(), nil)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errs.Is(err, commands.ErrResourceNotFound), errs.Is(err, queries.ErrResourceNotFound):
		return "Resource not found"
	case errs.Is(err, commands.ErrReservationNotFound), errs.Is(err, queries.ErrReservationNotFound):
		return "Reservation not found"
	case errs.Is(err, commands.ErrRequesterNotFound):
		return "Requester not found"
	default:
		return "Not found"
	}
}

func badRequest(c *gin.Context, msg string) {
	httperr.AbortWithError(c, http.StatusBadRequest, errInvalidRequest, msg, nil)
}
