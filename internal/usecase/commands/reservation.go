package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reservation-engine/internal/domain/availability"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReserveInput struct {
	ResourceID  string
	RequesterID string
	DateFrom    time.Time
	DateTo      time.Time
}

type TransitionResult struct {
	Reservation *reservation.Reservation
	// Changed is false when the call was a no-op (already in the target state).
	Changed bool
}

type SweepResult struct {
	Examined int
	Marked   []uuid.UUID
	Failed   int
}

type ReservationCommands interface {
	// Reserve admits a reservation straight into confirmed, or fails with Conflict.
	Reserve(ctx context.Context, in ReserveInput) (*reservation.Reservation, error)
	// Hold records a pending reservation that occupies nothing until confirmed.
	Hold(ctx context.Context, in ReserveInput) (*reservation.Reservation, error)
	Confirm(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Cancel(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Complete(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	MarkOverdueIfDue(ctx context.Context, id uuid.UUID, now time.Time) (*TransitionResult, error)
	SweepOverdue(ctx context.Context, now time.Time, limit int) (*SweepResult, error)
}

type reservationUseCaseImpl struct {
	uow        shared.UnitOfWork
	requesters shared.RequesterDirectory
	factory    *reservation.Factory
	clock      clock.Clock
	retry      shared.RetryPolicy
	logger     *slog.Logger
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	requesters shared.RequesterDirectory,
	factory *reservation.Factory,
	clk clock.Clock,
	retry shared.RetryPolicy,
	logger *slog.Logger,
) ReservationCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationUseCaseImpl{
		uow:        uow,
		requesters: requesters,
		factory:    factory,
		clock:      clk,
		retry:      retry,
		logger:     logger,
	}
}

func (uc *reservationUseCaseImpl) Reserve(ctx context.Context, in ReserveInput) (*reservation.Reservation, error) {
	in, iv, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	err = shared.WithRetry(ctx, uc.logger, uc.retry, "reserve", func(ctx context.Context) error {
		return uc.uow.WithinResource(ctx, in.ResourceID, func(ctx context.Context, tx shared.Tx) error {
			res, err := loadResource(ctx, tx, in.ResourceID)
			if err != nil {
				return err
			}
			if err := res.AcceptsReservations(); err != nil {
				return err
			}

			r, err := uc.factory.CreatePending(res, in.RequesterID, iv)
			if err != nil {
				return err
			}
			if err := uc.admit(ctx, tx, res, r); err != nil {
				return err
			}
			if err := tx.Reservations().Create(ctx, r); err != nil {
				return err
			}
			created = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("reservation admitted",
		"reservation_id", created.ID().String(),
		"resource_id", created.ResourceID(),
		"interval", created.Interval().String())
	return created, nil
}

func (uc *reservationUseCaseImpl) Hold(ctx context.Context, in ReserveInput) (*reservation.Reservation, error) {
	in, iv, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	err = shared.WithRetry(ctx, uc.logger, uc.retry, "hold", func(ctx context.Context) error {
		return uc.uow.WithinResource(ctx, in.ResourceID, func(ctx context.Context, tx shared.Tx) error {
			res, err := loadResource(ctx, tx, in.ResourceID)
			if err != nil {
				return err
			}
			if err := res.AcceptsReservations(); err != nil {
				return err
			}
			r, err := uc.factory.CreatePending(res, in.RequesterID, iv)
			if err != nil {
				return err
			}
			if err := tx.Reservations().Create(ctx, r); err != nil {
				return err
			}
			created = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("reservation held",
		"reservation_id", created.ID().String(),
		"resource_id", created.ResourceID(),
		"interval", created.Interval().String())
	return created, nil
}

func (uc *reservationUseCaseImpl) Confirm(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return uc.transition(ctx, id, "confirm", func(ctx context.Context, tx shared.Tx, res *resource.Resource, r *reservation.Reservation) (bool, error) {
		if r.Status() == reservation.StatusConfirmed {
			return false, nil
		}
		if !reservation.CanTransition(r.Status(), reservation.StatusConfirmed) {
			return r.Confirm(uc.clock.Now())
		}
		if err := res.AcceptsReservations(); err != nil {
			return false, err
		}
		if err := uc.admit(ctx, tx, res, r); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (uc *reservationUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return uc.transition(ctx, id, "cancel", func(_ context.Context, _ shared.Tx, _ *resource.Resource, r *reservation.Reservation) (bool, error) {
		return r.Cancel(uc.clock.Now())
	})
}

func (uc *reservationUseCaseImpl) Complete(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return uc.transition(ctx, id, "complete", func(_ context.Context, _ shared.Tx, _ *resource.Resource, r *reservation.Reservation) (bool, error) {
		return r.Complete(uc.clock.Now())
	})
}

func (uc *reservationUseCaseImpl) MarkOverdueIfDue(ctx context.Context, id uuid.UUID, now time.Time) (*TransitionResult, error) {
	return uc.transition(ctx, id, "mark-overdue", func(_ context.Context, _ shared.Tx, res *resource.Resource, r *reservation.Reservation) (bool, error) {
		return r.MarkOverdueIfDue(now, res.RequiresReturn()), nil
	})
}

func (uc *reservationUseCaseImpl) SweepOverdue(ctx context.Context, now time.Time, limit int) (*SweepResult, error) {
	if limit <= 0 {
		limit = 500
	}

	var due []*reservation.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		due, err = tx.Reservations().FindDueForOverdue(ctx, now, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Examined: len(due)}
	for _, r := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		tr, err := uc.MarkOverdueIfDue(ctx, r.ID(), now)
		if err != nil {
			result.Failed++
			uc.logger.Error("failed to mark reservation overdue",
				"reservation_id", r.ID().String(),
				"error", err.Error())
			continue
		}
		if tr.Changed {
			result.Marked = append(result.Marked, r.ID())
		}
	}

	uc.logger.Info("overdue sweep finished",
		"examined", result.Examined,
		"marked", len(result.Marked),
		"failed", result.Failed)
	return result, nil
}

type transitionFunc func(ctx context.Context, tx shared.Tx, res *resource.Resource, r *reservation.Reservation) (bool, error)

// transition routes the reservation to its resource, then re-reads and mutates it inside
// that resource's critical section.
func (uc *reservationUseCaseImpl) transition(ctx context.Context, id uuid.UUID, op string, apply transitionFunc) (*TransitionResult, error) {
	snap, err := uc.uow.CommandReads().ReservationByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReservationNotFound)
	}

	var result TransitionResult
	err = shared.WithRetry(ctx, uc.logger, uc.retry, op, func(ctx context.Context) error {
		return uc.uow.WithinResource(ctx, snap.ResourceID, func(ctx context.Context, tx shared.Tx) error {
			r, err := tx.Reservations().FindByID(ctx, id)
			if err != nil {
				return mapNotFound(err, ErrReservationNotFound)
			}
			res, err := loadResource(ctx, tx, r.ResourceID())
			if err != nil {
				return err
			}

			changed, err := apply(ctx, tx, res, r)
			if err != nil {
				return err
			}
			if changed {
				if err := tx.Reservations().Update(ctx, r); err != nil {
					return err
				}
			}
			result = TransitionResult{Reservation: r, Changed: changed}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("reservation transition",
		"operation", op,
		"reservation_id", id.String(),
		"status", result.Reservation.Status().String(),
		"changed", result.Changed)
	return &result, nil
}

// admit runs the conflict detector for r against the resource's occupying reservations
// and confirms r when it fits. Must be called inside the resource's critical section.
func (uc *reservationUseCaseImpl) admit(ctx context.Context, tx shared.Tx, res *resource.Resource, r *reservation.Reservation) error {
	existing, err := tx.Reservations().FindOccupying(ctx, res.ID(), r.Interval())
	if err != nil {
		return err
	}

	d := availability.Evaluate(res.Capacity(), r.Interval(), existing, r.ID())
	uc.logger.Debug("admission decision",
		"resource_id", res.ID(),
		"interval", r.Interval().String(),
		"capacity", d.Capacity,
		"peak", d.Peak,
		"ok", d.OK)
	if !d.OK {
		return newCapacityExceeded(res.ID(), r.Interval(), d)
	}

	_, err = r.Confirm(uc.clock.Now())
	return err
}

func (uc *reservationUseCaseImpl) validate(ctx context.Context, in ReserveInput) (ReserveInput, reservation.Interval, error) {
	in.ResourceID = strings.TrimSpace(in.ResourceID)
	in.RequesterID = strings.TrimSpace(in.RequesterID)

	iv, err := reservation.NewInterval(in.DateFrom, in.DateTo)
	if err != nil {
		return in, reservation.Interval{}, err
	}
	if in.ResourceID == "" {
		return in, reservation.Interval{}, resource.ErrEmptyResourceID
	}
	if in.RequesterID == "" {
		return in, reservation.Interval{}, reservation.ErrEmptyRequesterID
	}

	ok, err := uc.requesters.Exists(ctx, in.RequesterID)
	if err != nil {
		return in, reservation.Interval{}, errs.Wrap(err, "failed to look up requester")
	}
	if !ok {
		return in, reservation.Interval{}, errs.Wrapf(ErrRequesterNotFound, "%q", in.RequesterID)
	}
	return in, iv, nil
}

func loadResource(ctx context.Context, tx shared.Tx, id string) (*resource.Resource, error) {
	res, err := tx.Resources().FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrResourceNotFound)
	}
	return res, nil
}

func mapNotFound(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}
