//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	specific := errs.Category(errs.ErrConflict, "slot taken")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", errs.Wrap(errs.ErrInvalidArgument, "bad"), http.StatusBadRequest},
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"specific conflict", errs.Wrap(specific, "R1"), http.StatusConflict},
		{"aborted", errs.Mark(errors.New("lock wait"), errs.ErrAborted), http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httperr.StatusOf(tt.err))
		})
	}
}

func TestAbortWithError_SetsRetryAfterOn503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	httperr.AbortWithError(c, http.StatusServiceUnavailable, errs.ErrAborted, "busy", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":{"message":"busy"}}`, rec.Body.String())
}
