package main

import (
	"context"
	"time"

	"reservation-engine/cmd/bootstrap"

	"go.uber.org/fx"
)

const lifecycleTimeout = 30 * time.Second

// startCore boots the use-case graph without the HTTP layer and fills targets the way
// fx.Populate does. The returned stop releases the store.
func startCore(ctx context.Context, targets ...any) (func(), error) {
	app := fx.New(
		bootstrap.CoreModule,
		fx.Populate(targets...),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(ctx, lifecycleTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}
