package commands

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/usecase/shared"
)

type RegisterResourceInput struct {
	ID             string
	Capacity       int
	RequiresReturn bool
	Attributes     resource.Attributes
}

type ResourceCommands interface {
	// RegisterResource is insert-if-absent keyed by id; created is false when the id was
	// already registered, in which case the stored resource is returned untouched.
	RegisterResource(ctx context.Context, in RegisterResourceInput) (res *resource.Resource, created bool, err error)
	// RetireResource soft-deletes a resource. Its reservations stay valid for reporting,
	// new ones are rejected.
	RetireResource(ctx context.Context, id string) error
}

type resourceUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	retry  shared.RetryPolicy
	logger *slog.Logger
}

func NewResourceUseCase(uow shared.UnitOfWork, clk clock.Clock, retry shared.RetryPolicy, logger *slog.Logger) ResourceCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &resourceUseCaseImpl{uow: uow, clock: clk, retry: retry, logger: logger}
}

func (uc *resourceUseCaseImpl) RegisterResource(ctx context.Context, in RegisterResourceInput) (*resource.Resource, bool, error) {
	candidate, err := resource.NewResource(in.ID, in.Capacity, in.RequiresReturn, in.Attributes, uc.clock.Now())
	if err != nil {
		return nil, false, err
	}

	var (
		stored  *resource.Resource
		created bool
	)
	err = shared.WithRetry(ctx, uc.logger, uc.retry, "register-resource", func(ctx context.Context) error {
		return uc.uow.WithinResource(ctx, candidate.ID(), func(ctx context.Context, tx shared.Tx) error {
			inserted, err := tx.Resources().InsertIfAbsent(ctx, candidate)
			if err != nil {
				return err
			}
			if inserted {
				stored, created = candidate, true
				return nil
			}
			stored, err = loadResource(ctx, tx, candidate.ID())
			created = false
			return err
		})
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		uc.logger.Info("resource registered", "resource_id", stored.ID(), "capacity", stored.Capacity())
	}
	return stored, created, nil
}

func (uc *resourceUseCaseImpl) RetireResource(ctx context.Context, id string) error {
	return shared.WithRetry(ctx, uc.logger, uc.retry, "retire-resource", func(ctx context.Context) error {
		return uc.uow.WithinResource(ctx, id, func(ctx context.Context, tx shared.Tx) error {
			res, err := loadResource(ctx, tx, id)
			if err != nil {
				return err
			}
			if res.IsDeleted() {
				return nil
			}
			return tx.Resources().SoftDelete(ctx, id, uc.clock.Now())
		})
	})
}
