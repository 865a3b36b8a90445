//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/handler/api"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/middleware"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"
	"reservation-engine/tests/common/builder"
	"reservation-engine/tests/common/httptest"
	"reservation-engine/tests/common/testutil"
	commandsmock "reservation-engine/tests/mock/commands"
	queriesmock "reservation-engine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testRequester = "guest-1"

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	clock        *clock.MockClock
	handler      *api.ReservationHandler
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.clock = clock.NewMockClock(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries, s.clock)

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetRequesterID(c, testRequester)
		c.Next()
	}

	s.router.POST("/reservations", authMiddleware, s.handler.Reserve)
	s.router.POST("/reservations/holds", authMiddleware, s.handler.Hold)
	s.router.GET("/reservations/:id", s.handler.GetReservation)
	s.router.POST("/reservations/:id/confirm", authMiddleware, s.handler.Confirm)
	s.router.POST("/reservations/:id/cancel", authMiddleware, s.handler.Cancel)
	s.router.POST("/reservations/:id/complete", authMiddleware, s.handler.Complete)
	s.router.POST("/reservations/:id/mark-overdue", authMiddleware, s.handler.MarkOverdue)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

// ================================================================================
// TestReserve
// ================================================================================

func (s *ReservationHandlerTestSuite) TestReserve() {
	url := "/reservations"
	b := builder.NewReservationBuilder()
	reqBody := b.BuildReserveRequestDTO()
	created := b.BuildDomain()

	s.Run("success: 201 with Location and the requester from auth", func() {
		s.mockCommands.EXPECT().Reserve(gomock.Any(), commands.ReserveInput{
			ResourceID:  b.ResourceID,
			RequesterID: testRequester,
			DateFrom:    b.DateFrom,
			DateTo:      b.DateTo,
		}).Return(created, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(created.ID(), body.ID)
		s.Equal("confirmed", body.Status)
		s.Equal(int64(30000), body.TotalPriceCents)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/reservations/" + created.ID().String()})
	})

	s.Run("error: 400 on missing fields", func() {
		for _, field := range []string{"resourceId", "dateFrom", "dateTo"} {
			s.Run(field, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field(field, nil))
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("error: 409 names the conflicting reservations", func() {
		peer := uuid.New()
		s.mockCommands.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(nil, &commands.CapacityExceededError{
			ResourceID: b.ResourceID,
			Interval:   reservation.MustInterval(b.DateFrom, b.DateTo),
			Capacity:   1,
			Peak:       1,
			Conflicts:  []uuid.UUID{peer},
		}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "capacity exceeded")
		s.Contains(rec.Body.String(), peer.String())
	})

	statusCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid interval", errs.Wrap(reservation.ErrInvalidInterval, "from >= to"), http.StatusBadRequest, "dateFrom must be before dateTo"},
		{"unknown resource", errs.Mark(errs.New("lookup"), commands.ErrResourceNotFound), http.StatusNotFound, "Resource not found"},
		{"unknown requester", commands.ErrRequesterNotFound, http.StatusNotFound, "Requester not found"},
		{"lock wait exhausted", errs.Mark(errs.New("lock wait"), errs.ErrAborted), http.StatusServiceUnavailable, "retry later"},
		{"store failure", errs.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range statusCases {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
			httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
		})
	}

	s.Run("error: 503 advertises Retry-After", func() {
		s.mockCommands.EXPECT().Reserve(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("busy"), errs.ErrAborted)).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Retry-After": "1"})
	})
}

func (s *ReservationHandlerTestSuite) TestHold() {
	b := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.Status = reservation.StatusPending
	})

	s.mockCommands.EXPECT().Hold(gomock.Any(), gomock.Any()).Return(b.BuildDomain(), nil).Times(1)
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/holds", b.BuildReserveRequestDTO(), "bearer-token")

	var body resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
	s.Equal("pending", body.Status)
}

// ================================================================================
// TestGetReservation
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	view := builder.NewReservationBuilder().BuildView()

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetReservation(gomock.Any(), view.ID).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.True(view.DateFrom.Equal(body.DateFrom))
	})

	s.Run("error: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/not-a-uuid", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation ID format")
	})

	s.Run("error: not found", func() {
		s.mockQueries.EXPECT().GetReservation(gomock.Any(), gomock.Any()).
			Return(nil, errs.Wrap(queries.ErrReservationNotFound, "x")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+uuid.NewString(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})
}

// ================================================================================
// TestTransitions
// ================================================================================

func (s *ReservationHandlerTestSuite) TestTransitions() {
	b := builder.NewReservationBuilder()
	id := b.ID

	s.Run("confirm reports whether anything changed", func() {
		s.mockCommands.EXPECT().Confirm(gomock.Any(), id).
			Return(&commands.TransitionResult{Reservation: b.BuildDomain(), Changed: false}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", nil, "bearer-token")

		var body resdto.TransitionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.Changed)
		s.Equal("confirmed", body.Reservation.Status)
	})

	s.Run("cancel", func() {
		cancelled := builder.NewReservationBuilder().With(func(r *builder.ReservationBuilder) {
			r.ID = id
			r.Status = reservation.StatusCancelled
		}).BuildDomain()
		s.mockCommands.EXPECT().Cancel(gomock.Any(), id).
			Return(&commands.TransitionResult{Reservation: cancelled, Changed: true}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/cancel", nil, "bearer-token")

		var body resdto.TransitionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Changed)
		s.Equal("cancelled", body.Reservation.Status)
	})

	s.Run("complete on a terminal reservation is 400", func() {
		s.mockCommands.EXPECT().Complete(gomock.Any(), id).
			Return(nil, errs.Wrap(reservation.ErrInvalidTransition, "cancelled -> completed")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/complete", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "transition")
	})

	s.Run("mark-overdue uses the handler clock", func() {
		s.mockCommands.EXPECT().MarkOverdueIfDue(gomock.Any(), id, s.clock.Now()).
			Return(&commands.TransitionResult{Reservation: b.BuildDomain(), Changed: false}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/mark-overdue", nil, "bearer-token")
		s.Equal(http.StatusOK, rec.Code)
	})
}
