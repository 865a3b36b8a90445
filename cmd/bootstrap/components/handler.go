package components

import (
	"reservation-engine/internal/handler"
	"reservation-engine/internal/handler/api"
	"reservation-engine/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewResourceHandler,
		middleware.NewAuthMiddleware,
		func(r *api.ReservationHandler, res *api.ResourceHandler) handler.Handlers {
			return handler.Handlers{Reservations: r, Resources: res}
		},
	),
	fx.Invoke(handler.NewRouter),
)
