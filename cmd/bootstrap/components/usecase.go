package components

import (
	"log/slog"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"
	"reservation-engine/internal/usecase/seeding"
	"reservation-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		reservation.NewDefaultPriceCalculator,
		fx.As(new(reservation.PriceCalculator)),
	),
	reservation.NewFactory,
	NewRetryPolicy,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationUseCase,
		commands.NewResourceUseCase,
		seeding.NewSeeder,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)

func NewRetryPolicy(cfg config.Config, logger *slog.Logger) shared.RetryPolicy {
	policy := shared.RetryPolicy{
		MaxRetries: cfg.Admission.MaxRetries,
		BaseDelay:  cfg.Admission.BaseDelay,
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = shared.DefaultRetryPolicy().BaseDelay
	}
	logger.Debug("admission retry policy", "max_retries", policy.MaxRetries, "base_delay", policy.BaseDelay)
	return policy
}
