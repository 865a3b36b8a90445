package api

import (
	"context"
	"net/http"

	"reservation-engine/internal/domain/reservation"
	reqdto "reservation-engine/internal/handler/dto/request"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/handler/middleware"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands commands.ReservationCommands
	queries  queries.ReservationQueries
	clock    clock.Clock
}

func NewReservationHandler(commands commands.ReservationCommands, queries queries.ReservationQueries, clk clock.Clock) *ReservationHandler {
	return &ReservationHandler{
		commands: commands,
		queries:  queries,
		clock:    clk,
	}
}

// @Summary Reserve
// @Description Admit a reservation for the authenticated requester, confirmed immediately
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ReserveRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	h.create(c, h.commands.Reserve)
}

// @Summary Hold
// @Description Record a pending reservation; it occupies nothing until confirmed
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ReserveRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Router /api/reservations/holds [post]
func (h *ReservationHandler) Hold(c *gin.Context) {
	h.create(c, h.commands.Hold)
}

func (h *ReservationHandler) create(c *gin.Context, admit func(context.Context, commands.ReserveInput) (*reservation.Reservation, error)) {
	requesterID, ok := middleware.GetRequesterID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingRequester, "Internal server error", nil)
		return
	}

	var req reqdto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	res, err := admit(c.Request.Context(), req.ToInput(requesterID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", "/api/reservations/"+res.ID().String())
	c.JSON(http.StatusCreated, resdto.FromReservation(res))
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(*view))
}

// @Summary Confirm a pending reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.commands.Confirm)
}

// @Summary Cancel a reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.TransitionResponse
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.commands.Cancel)
}

// @Summary Complete a reservation (records the return)
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.TransitionResponse
// @Router /api/reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.commands.Complete)
}

// @Summary Mark a reservation overdue when its return is late
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.TransitionResponse
// @Router /api/reservations/{id}/mark-overdue [post]
func (h *ReservationHandler) MarkOverdue(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id uuid.UUID) (*commands.TransitionResult, error) {
		return h.commands.MarkOverdueIfDue(ctx, id, h.clock.Now())
	})
}

func (h *ReservationHandler) transition(c *gin.Context, apply func(context.Context, uuid.UUID) (*commands.TransitionResult, error)) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}

	result, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransitionResult(result))
}

func parseReservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid reservation ID format")
		return uuid.Nil, false
	}
	return id, true
}
