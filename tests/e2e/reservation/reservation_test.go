//go:build e2e

package reservation_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	reqdto "reservation-engine/internal/handler/dto/request"
	"reservation-engine/internal/handler/dto/response"
	"reservation-engine/tests/common/authtest"
	"reservation-engine/tests/common/dbtest"
	"reservation-engine/tests/common/httptest"
	"reservation-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reservationsURL = "/api/reservations"
	holdsURL        = "/api/reservations/holds"
	transitionURL   = "/api/reservations/%s/%s"
	availabilityURL = "/api/resources/%s/availability?from=%s&to=%s"
	listURL         = "/api/resources/%s/reservations"
)

type ReservationSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *ReservationSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *ReservationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReservationSuite))
}

var day0 = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

func days(n int) time.Time { return day0.Add(time.Duration(n) * 24 * time.Hour) }

func (s *ReservationSuite) reserve(token, resourceID string, from, to time.Time) (int, response.ReservationResponse, string) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqdto.ReserveRequest{
		ResourceID: resourceID,
		DateFrom:   from,
		DateTo:     to,
	}, token)

	raw := w.Body.String()
	var body response.ReservationResponse
	if w.Code == http.StatusCreated {
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	}
	return w.Code, body, raw
}

func (s *ReservationSuite) transition(token string, id uuid.UUID, action string) (int, response.TransitionResponse) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(transitionURL, id, action), nil, token)

	var body response.TransitionResponse
	if w.Code == http.StatusOK {
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	}
	return w.Code, body
}

// =============================================================================
// TestReserve
// =============================================================================

func (s *ReservationSuite) TestReserve() {
	s.Run("confirmed reservation is priced and stored", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, `{"price":"100.00"}`)
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		code, got, raw := s.reserve(token, "room-1", days(0), days(3))
		require.Equal(t, http.StatusCreated, code, raw)

		want := response.ReservationResponse{
			ResourceID:      "room-1",
			RequesterID:     dbtest.DefaultRequesterID,
			DateFrom:        days(0),
			DateTo:          days(3),
			Status:          "confirmed",
			TotalPriceCents: 30000,
		}
		if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(response.ReservationResponse{}, "ID", "CreatedAt", "LastUpdatedAt")); diff != "" {
			t.Errorf("reservation mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, 1, dbtest.CountReservations(t, s.DB, "room-1", "confirmed"))
	})

	s.Run("overlap on a single-capacity resource is rejected with the conflicting id", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		code, first, raw := s.reserve(token, "room-1", days(0), days(3))
		require.Equal(t, http.StatusCreated, code, raw)

		code, _, raw = s.reserve(token, "room-1", days(2), days(4))
		require.Equal(t, http.StatusConflict, code)
		require.Contains(t, raw, first.ID.String())
		require.Equal(t, 1, dbtest.CountReservations(t, s.DB, "room-1", "confirmed"))
	})

	s.Run("back-to-back intervals do not conflict", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		code, _, raw := s.reserve(token, "room-1", days(0), days(3))
		require.Equal(t, http.StatusCreated, code, raw)
		code, _, raw = s.reserve(token, "room-1", days(3), days(5))
		require.Equal(t, http.StatusCreated, code, raw)
	})

	s.Run("capacity two admits two overlapping reservations and rejects the third", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "van-1", 2, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		code, _, raw := s.reserve(token, "van-1", days(0), days(2))
		require.Equal(t, http.StatusCreated, code, raw)
		code, _, raw = s.reserve(token, "van-1", days(1), days(3))
		require.Equal(t, http.StatusCreated, code, raw)
		code, _, _ = s.reserve(token, "van-1", days(1), days(2))
		require.Equal(t, http.StatusConflict, code)

		// overlaps only the second one
		code, _, raw = s.reserve(token, "van-1", days(2), days(4))
		require.Equal(t, http.StatusCreated, code, raw)
	})

	s.Run("unknown resource and requester are 404", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")

		code, _, _ := s.reserve(s.jwt.GenerateToken(t, dbtest.DefaultRequesterID), "room-404", days(0), days(1))
		require.Equal(t, http.StatusNotFound, code)

		code, _, _ = s.reserve(s.jwt.GenerateToken(t, "stranger"), "room-1", days(0), days(1))
		require.Equal(t, http.StatusNotFound, code)
	})

	s.Run("empty interval is 400", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		code, _, _ := s.reserve(s.jwt.GenerateToken(t, dbtest.DefaultRequesterID), "room-1", days(1), days(1))
		require.Equal(t, http.StatusBadRequest, code)
	})

	s.Run("requires a token", func() {
		code, _, _ := s.reserve("", "room-1", days(0), days(1))
		require.Equal(s.T(), http.StatusUnauthorized, code)
	})
}

// =============================================================================
// TestConcurrentAdmission
// =============================================================================

func (s *ReservationSuite) TestConcurrentAdmission() {
	s.Run("racing requests never overbook", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		const workers = 12
		codes := make([]int, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, reqdto.ReserveRequest{
					ResourceID: "room-1",
					DateFrom:   days(0),
					DateTo:     days(2),
				}, token)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		created := 0
		for _, c := range codes {
			require.Contains(t, []int{http.StatusCreated, http.StatusConflict, http.StatusServiceUnavailable}, c)
			if c == http.StatusCreated {
				created++
			}
		}
		require.Equal(t, 1, created)
		require.Equal(t, 1, dbtest.CountReservations(t, s.DB, "room-1", "confirmed"))
	})
}

// =============================================================================
// TestLifecycle
// =============================================================================

func (s *ReservationSuite) TestLifecycle() {
	s.Run("cancel frees the interval and repeating it is a no-op", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		_, first, _ := s.reserve(token, "room-1", days(0), days(3))

		code, tr := s.transition(token, first.ID, "cancel")
		require.Equal(t, http.StatusOK, code)
		require.True(t, tr.Changed)
		require.Equal(t, "cancelled", tr.Reservation.Status)

		code, tr = s.transition(token, first.ID, "cancel")
		require.Equal(t, http.StatusOK, code)
		require.False(t, tr.Changed)

		code, _, raw := s.reserve(token, "room-1", days(1), days(2))
		require.Equal(t, http.StatusCreated, code, raw)
	})

	s.Run("a hold occupies nothing until confirmed", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqdto.ReserveRequest{
			ResourceID: "room-1", DateFrom: days(0), DateTo: days(3),
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var hold response.ReservationResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &hold))
		require.Equal(t, "pending", hold.Status)

		code, _, raw := s.reserve(token, "room-1", days(1), days(2))
		require.Equal(t, http.StatusCreated, code, raw)

		code, _ = s.transition(token, hold.ID, "confirm")
		require.Equal(t, http.StatusConflict, code)
	})

	s.Run("completion is terminal", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)
		_, r, _ := s.reserve(token, "room-1", days(0), days(1))

		code, tr := s.transition(token, r.ID, "complete")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "completed", tr.Reservation.Status)
		require.NotNil(t, tr.Reservation.ReturnedAt)

		code, _ = s.transition(token, r.ID, "cancel")
		require.Equal(t, http.StatusBadRequest, code)
	})

	s.Run("overdue only for return-requiring resources past their end", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "bike-1", 1, true, "")
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)

		past := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Hour)
		_, bike, _ := s.reserve(token, "bike-1", past, past.Add(24*time.Hour))
		_, room, _ := s.reserve(token, "room-1", past, past.Add(24*time.Hour))

		code, tr := s.transition(token, bike.ID, "mark-overdue")
		require.Equal(t, http.StatusOK, code)
		require.True(t, tr.Changed)
		require.Equal(t, "overdue", tr.Reservation.Status)

		code, tr = s.transition(token, room.ID, "mark-overdue")
		require.Equal(t, http.StatusOK, code)
		require.False(t, tr.Changed)
		require.Equal(t, "confirmed", tr.Reservation.Status)

		// overdue still occupies
		code, _, _ = s.reserve(token, "bike-1", past, past.Add(time.Hour))
		require.Equal(t, http.StatusConflict, code)
	})
}

// =============================================================================
// TestQueries
// =============================================================================

func (s *ReservationSuite) TestQueries() {
	s.Run("availability reports peak and conflicts", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 1, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)
		_, r, _ := s.reserve(token, "room-1", days(0), days(3))

		url := fmt.Sprintf(availabilityURL, "room-1", days(1).Format(time.RFC3339), days(2).Format(time.RFC3339))
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, "")
		var busy response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &busy)
		require.False(t, busy.Available)
		require.Len(t, busy.Conflicts, 1)
		require.Equal(t, r.ID, busy.Conflicts[0].ID)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, url+"&exclude="+r.ID.String(), nil, "")
		var free response.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &free)
		require.True(t, free.Available)
	})

	s.Run("get and list reservations", func() {
		t := s.T()
		dbtest.CreateTestResource(t, s.DB, "room-1", 2, false, "")
		token := s.jwt.GenerateToken(t, dbtest.DefaultRequesterID)
		_, a, _ := s.reserve(token, "room-1", days(5), days(6))
		_, b, _ := s.reserve(token, "room-1", days(0), days(1))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL+"/"+a.ID.String(), nil, "")
		var got response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Equal(t, a.ID, got.ID)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(listURL, "room-1"), nil, "")
		var list []response.ReservationResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		require.Len(t, list, 2)
		require.Equal(t, b.ID, list[0].ID, "ordered by start")

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL+"/"+uuid.NewString(), nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
