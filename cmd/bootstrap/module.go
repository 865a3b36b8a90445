package bootstrap

import (
	"reservation-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module is everything the HTTP server needs. The caller supplies the *gin.Engine.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	JWTModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)

// CoreModule wires the use cases without the HTTP layer, for one-shot CLI commands.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	components.PersistenceModule,
	components.UseCaseModule,
)
