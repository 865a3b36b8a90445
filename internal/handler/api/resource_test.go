//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/handler/api"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/middleware"
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

type ResourceHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockResourceCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ResourceHandler
}

func (s *ResourceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockResourceCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewResourceHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/resources", s.handler.RegisterResource)
	s.router.DELETE("/resources/:id", s.handler.RetireResource)
	s.router.GET("/resources/:id/availability", s.handler.CheckAvailability)
	s.router.GET("/resources/:id/reservations", s.handler.ListReservations)
}

func (s *ResourceHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestResourceHandlerSuite(t *testing.T) {
	suite.Run(t, new(ResourceHandlerTestSuite))
}

func (s *ResourceHandlerTestSuite) TestRegisterResource() {
	b := builder.NewResourceBuilder()
	reqBody := b.BuildRegisterRequestDTO()

	s.Run("created", func() {
		s.mockCommands.EXPECT().RegisterResource(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in commands.RegisterResourceInput) (*resource.Resource, bool, error) {
				s.Equal("room-101", in.ID)
				s.Equal("100.00", in.Attributes["price"])
				return b.BuildDomain(), true, nil
			}).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", reqBody, "")

		var body resdto.ResourceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(1, body.Capacity)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/resources/room-101"})
	})

	s.Run("already registered is 200", func() {
		s.mockCommands.EXPECT().RegisterResource(gomock.Any(), gomock.Any()).
			Return(b.BuildDomain(), false, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", reqBody, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	invalid := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing id", testutil.Field("id", nil)},
		{"zero capacity", testutil.Field("capacity", 0)},
		{"negative capacity", testutil.Field("capacity", -2)},
	}
	for _, tc := range invalid {
		s.Run("error: "+tc.name, func() {
			requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", requestMap, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
		})
	}
}

func (s *ResourceHandlerTestSuite) TestRetireResource() {
	s.Run("success", func() {
		s.mockCommands.EXPECT().RetireResource(gomock.Any(), "room-101").Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/resources/room-101", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("unknown resource", func() {
		s.mockCommands.EXPECT().RetireResource(gomock.Any(), "ghost").Return(commands.ErrResourceNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/resources/ghost", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Resource not found")
	})
}

func (s *ResourceHandlerTestSuite) TestCheckAvailability() {
	from := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	url := "/resources/room-101/availability?from=2026-02-12T00:00:00Z&to=2026-02-14T00:00:00Z"
	peer := builder.NewReservationBuilder().BuildView()

	s.Run("unavailable lists conflicts", func() {
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), "room-101", from, to, uuid.Nil).
			Return(&queries.AvailabilityView{
				ResourceID: "room-101",
				DateFrom:   from,
				DateTo:     to,
				Available:  false,
				Capacity:   1,
				Peak:       1,
				Conflicts:  []queries.ReservationView{*peer},
			}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.Available)
		s.Require().Len(body.Conflicts, 1)
		s.Equal(peer.ID, body.Conflicts[0].ID)
	})

	s.Run("exclude is passed through", func() {
		exclude := uuid.New()
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), "room-101", from, to, exclude).
			Return(&queries.AvailabilityView{Available: true, Capacity: 1, Remaining: 1}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"&exclude="+exclude.String(), nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: missing bounds", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/room-101/availability?from=2026-02-12T00:00:00Z", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "required")
	})

	s.Run("error: malformed exclude", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"&exclude=nope", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: retired resource", func() {
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Wrap(queries.ErrResourceNotFound, "room-101")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Resource not found")
	})
}

func (s *ResourceHandlerTestSuite) TestListReservations() {
	view := builder.NewReservationBuilder().BuildView()

	s.Run("without window", func() {
		s.mockQueries.EXPECT().ListByResource(gomock.Any(), "room-101", (*reservation.Interval)(nil), 0).
			Return([]queries.ReservationView{*view}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/room-101/reservations", nil, "")

		var body []resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})

	s.Run("with window and limit", func() {
		want := reservation.MustInterval(
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		)
		s.mockQueries.EXPECT().ListByResource(gomock.Any(), "room-101", &want, 5).
			Return(nil, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/resources/room-101/reservations?from=2026-02-01T00:00:00Z&to=2026-03-01T00:00:00Z&limit=5", nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: half-open window", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/room-101/reservations?from=2026-02-01T00:00:00Z", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "together")
	})

	s.Run("error: inverted window", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/resources/room-101/reservations?from=2026-03-01T00:00:00Z&to=2026-02-01T00:00:00Z", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
