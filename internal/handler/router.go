package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"reservation-engine/internal/handler/api"
	"reservation-engine/internal/handler/middleware"
	"reservation-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Reservations *api.ReservationHandler
	Resources    *api.ResourceHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := []gin.HandlerFunc{authMiddleware.RequireAuth()}

	apiGroup := engine.Group("/api")
	{
		resources := apiGroup.Group("/resources")
		addRoutes(resources, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Resources.RegisterResource, Mw: requireAuth},
			{Method: http.MethodDelete, Path: "/:id", Handler: h.Resources.RetireResource, Mw: requireAuth},
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Resources.CheckAvailability},
			{Method: http.MethodGet, Path: "/:id/reservations", Handler: h.Resources.ListReservations},
		})

		reservations := apiGroup.Group("/reservations")
		addRoutes(reservations, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Reservations.Reserve, Mw: requireAuth},
			{Method: http.MethodPost, Path: "/holds", Handler: h.Reservations.Hold, Mw: requireAuth},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Reservations.GetReservation},
			{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Reservations.Confirm, Mw: requireAuth},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservations.Cancel, Mw: requireAuth},
			{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Reservations.Complete, Mw: requireAuth},
			{Method: http.MethodPost, Path: "/:id/mark-overdue", Handler: h.Reservations.MarkOverdue, Mw: requireAuth},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
