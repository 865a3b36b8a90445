package api

import (
	"net/http"

	"reservation-engine/internal/domain/reservation"
	reqdto "reservation-engine/internal/handler/dto/request"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResourceHandler struct {
	commands commands.ResourceCommands
	queries  queries.ReservationQueries
}

func NewResourceHandler(commands commands.ResourceCommands, queries queries.ReservationQueries) *ResourceHandler {
	return &ResourceHandler{
		commands: commands,
		queries:  queries,
	}
}

// @Summary Register resource
// @Description Insert-if-absent by id; 200 with the stored resource when it already existed
// @Tags resources
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterResourceRequest true "Resource"
// @Success 201 {object} resdto.ResourceResponse
// @Success 200 {object} resdto.ResourceResponse
// @Failure 400 {object} httperr.Response
// @Router /api/resources [post]
func (h *ResourceHandler) RegisterResource(c *gin.Context) {
	var req reqdto.RegisterResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	res, created, err := h.commands.RegisterResource(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		c.Header("Location", "/api/resources/"+res.ID())
	}
	c.JSON(status, resdto.FromResource(res))
}

// @Summary Retire resource
// @Description Soft delete; existing reservations stay, new ones are rejected
// @Tags resources
// @Param id path string true "Resource ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /api/resources/{id} [delete]
func (h *ResourceHandler) RetireResource(c *gin.Context) {
	if err := h.commands.RetireResource(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Check availability
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Param from query string true "RFC 3339 start (inclusive)"
// @Param to query string true "RFC 3339 end (exclusive)"
// @Param exclude query string false "Reservation ID to ignore"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/resources/{id}/availability [get]
func (h *ResourceHandler) CheckAvailability(c *gin.Context) {
	var q reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "from and to are required RFC 3339 times")
		return
	}

	exclude := uuid.Nil
	if q.Exclude != "" {
		exclude = uuid.MustParse(q.Exclude)
	}

	view, err := h.queries.CheckAvailability(c.Request.Context(), c.Param("id"), q.From, q.To, exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary List reservations of a resource
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Param from query string false "window start"
// @Param to query string false "window end"
// @Param limit query int false "max rows"
// @Success 200 {array} resdto.ReservationResponse
// @Router /api/resources/{id}/reservations [get]
func (h *ResourceHandler) ListReservations(c *gin.Context) {
	var q reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	var window *reservation.Interval
	switch {
	case q.From != nil && q.To != nil:
		iv, err := reservation.NewInterval(*q.From, *q.To)
		if err != nil {
			respondError(c, err)
			return
		}
		window = &iv
	case q.From != nil || q.To != nil:
		badRequest(c, "from and to must be given together")
		return
	}

	views, err := h.queries.ListByResource(c.Request.Context(), c.Param("id"), window, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}
