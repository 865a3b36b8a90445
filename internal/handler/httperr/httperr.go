package httperr

import (
	"net/http"
	"strconv"

	"reservation-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// RetryAfterSeconds is advertised on 503 responses for Aborted admissions.
const RetryAfterSeconds = 1

var ErrUnauthorized = errs.New("unauthorized")

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// StatusOf maps an error category onto an HTTP status. Uncategorized errors are 500.
func StatusOf(err error) int {
	switch {
	case errs.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errs.Is(err, errs.ErrAborted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
