// Package seeding imports resources, requesters and reservations from external data.
// Re-running an import is a no-op, and every record that cannot be stored is reported
// instead of failing the batch.
package seeding

import (
	"context"
	"fmt"
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

type RequesterRecord struct {
	ID          string
	DisplayName string
}

type ResourceRecord struct {
	ID             string
	Capacity       int
	RequiresReturn bool
	Attributes     resource.Attributes
}

type ReservationRecord struct {
	// Key is the natural id of the booking in the source data.
	Key         string
	ResourceID  string
	RequesterID string
	DateFrom    time.Time
	DateTo      time.Time
	// Status defaults to confirmed.
	Status string
}

type SeedInput struct {
	Requesters   []RequesterRecord
	Resources    []ResourceRecord
	Reservations []ReservationRecord
}

type Seeder interface {
	Seed(ctx context.Context, in SeedInput) (*Report, error)
}

type seederImpl struct {
	uow     shared.UnitOfWork
	factory *reservation.Factory
	clock   clock.Clock
	retry   shared.RetryPolicy
	logger  *slog.Logger
}

func NewSeeder(uow shared.UnitOfWork, factory *reservation.Factory, clk clock.Clock, retry shared.RetryPolicy, logger *slog.Logger) Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &seederImpl{uow: uow, factory: factory, clock: clk, retry: retry, logger: logger}
}

// Seed loads requesters, then resources, then reservations in input order. A returned
// error means the store failed; record-level problems only show up in the report.
func (s *seederImpl) Seed(ctx context.Context, in SeedInput) (*Report, error) {
	report := &Report{Results: make([]RecordResult, 0, len(in.Requesters)+len(in.Resources)+len(in.Reservations))}

	if err := s.seedRequesters(ctx, in.Requesters, report); err != nil {
		return report, err
	}
	if err := s.seedResources(ctx, in.Resources, report); err != nil {
		return report, err
	}
	if err := s.seedReservations(ctx, in.Reservations, report); err != nil {
		return report, err
	}

	sum := report.Summary()
	s.logger.Info("seed finished",
		"inserted", sum.Inserted,
		"skipped_duplicate", sum.SkippedDuplicate,
		"rejected_referential_integrity", sum.RejectedReferentialIntegrity,
		"rejected_invariant_violation", sum.RejectedInvariantViolation)
	return report, nil
}

func (s *seederImpl) seedRequesters(ctx context.Context, records []RequesterRecord, report *Report) error {
	for i, rec := range records {
		id := strings.TrimSpace(rec.ID)
		result := RecordResult{Kind: KindRequester, Index: i, Key: rec.ID, ID: id}
		if id == "" {
			result.Outcome = OutcomeRejectedInvariantViolation
			result.Reason = reservation.ErrEmptyRequesterID.Error()
			report.add(result)
			continue
		}

		var inserted bool
		err := shared.WithRetry(ctx, s.logger, s.retry, "seed-requester", func(ctx context.Context) error {
			return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
				var err error
				inserted, err = tx.Requesters().InsertIfAbsent(ctx, id, strings.TrimSpace(rec.DisplayName), s.clock.Now())
				return err
			})
		})
		if err != nil {
			return errs.Wrapf(err, "seed requester %q", id)
		}
		result.Outcome = insertedOrSkipped(inserted)
		report.add(result)
	}
	return nil
}

func (s *seederImpl) seedResources(ctx context.Context, records []ResourceRecord, report *Report) error {
	for i, rec := range records {
		result := RecordResult{Kind: KindResource, Index: i, Key: rec.ID}

		res, err := resource.NewResource(rec.ID, rec.Capacity, rec.RequiresReturn, rec.Attributes, s.clock.Now())
		if err != nil {
			result.Outcome = OutcomeRejectedInvariantViolation
			result.Reason = err.Error()
			report.add(result)
			continue
		}
		result.ID = res.ID()

		var inserted bool
		err = shared.WithRetry(ctx, s.logger, s.retry, "seed-resource", func(ctx context.Context) error {
			return s.uow.WithinResource(ctx, res.ID(), func(ctx context.Context, tx shared.Tx) error {
				var err error
				inserted, err = tx.Resources().InsertIfAbsent(ctx, res)
				return err
			})
		})
		if err != nil {
			return errs.Wrapf(err, "seed resource %q", res.ID())
		}
		result.Outcome = insertedOrSkipped(inserted)
		report.add(result)
	}
	return nil
}

func (s *seederImpl) seedReservations(ctx context.Context, records []ReservationRecord, report *Report) error {
	firstIndex := make(map[string]int, len(records))
	positions := batchPositions(records)

	for i, rec := range records {
		key := strings.TrimSpace(rec.Key)
		result := RecordResult{Kind: KindReservation, Index: i, Key: rec.Key}

		if key == "" {
			result.Outcome = OutcomeRejectedInvariantViolation
			result.Reason = "reservation key cannot be empty"
			report.add(result)
			continue
		}
		id := reservation.SeedID(key)
		result.ID = id.String()

		if prev, seen := firstIndex[key]; seen {
			result.Outcome = OutcomeSkippedDuplicate
			result.Reason = fmt.Sprintf("duplicate of record %d in this batch", prev)
			report.add(result)
			continue
		}
		firstIndex[key] = i

		err := shared.WithRetry(ctx, s.logger, s.retry, "seed-reservation", func(ctx context.Context) error {
			return s.uow.WithinResource(ctx, strings.TrimSpace(rec.ResourceID), func(ctx context.Context, tx shared.Tx) error {
				outcome, err := s.applyReservation(ctx, tx, rec, key, laterInBatch(positions, i))
				if err != nil {
					return err
				}
				result.Outcome = outcome.Outcome
				result.Reason = outcome.Reason
				result.ConflictsWith = outcome.ConflictsWith
				return nil
			})
		})
		if err != nil {
			return errs.Wrapf(err, "seed reservation %q", key)
		}
		if result.Outcome != OutcomeInserted && result.Outcome != OutcomeSkippedDuplicate {
			s.logger.Warn("seed record rejected",
				"key", key,
				"outcome", string(result.Outcome),
				"reason", result.Reason)
		}
		report.add(result)
	}
	return nil
}

// applyReservation decides one record inside its resource's critical section. Rejections
// are returned as outcomes; only store failures come back as errors. later reports ids of
// records that come after this one in the batch.
func (s *seederImpl) applyReservation(ctx context.Context, tx shared.Tx, rec ReservationRecord, key string, later func(uuid.UUID) bool) (RecordResult, error) {
	id := reservation.SeedID(key)

	if _, err := tx.Reservations().FindByID(ctx, id); err == nil {
		return RecordResult{Outcome: OutcomeSkippedDuplicate, Reason: "already stored"}, nil
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return RecordResult{}, err
	}

	iv, err := reservation.NewInterval(rec.DateFrom, rec.DateTo)
	if err != nil {
		return invariantViolation(err), nil
	}
	status := reservation.StatusConfirmed
	if strings.TrimSpace(rec.Status) != "" {
		if status, err = reservation.ParseStatus(rec.Status); err != nil {
			return invariantViolation(err), nil
		}
	}

	res, err := tx.Resources().FindByID(ctx, strings.TrimSpace(rec.ResourceID))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return RecordResult{
				Outcome: OutcomeRejectedReferentialIntegrity,
				Reason:  fmt.Sprintf("resource %q does not exist", rec.ResourceID),
			}, nil
		}
		return RecordResult{}, err
	}
	if err := res.AcceptsReservations(); err != nil {
		return RecordResult{
			Outcome: OutcomeRejectedReferentialIntegrity,
			Reason:  fmt.Sprintf("resource %q: %s", res.ID(), err.Error()),
		}, nil
	}

	r, err := s.factory.CreateWithID(id, res, rec.RequesterID, iv)
	if err != nil {
		return invariantViolation(err), nil
	}

	if status.IsOccupying() {
		existing, err := tx.Reservations().FindOccupying(ctx, res.ID(), iv)
		if err != nil {
			return RecordResult{}, err
		}
		d := availability.Evaluate(res.Capacity(), iv, existing, id)
		if !d.OK {
			return RecordResult{
				Outcome:       OutcomeRejectedInvariantViolation,
				Reason:        fmt.Sprintf("capacity %d exceeded on %s %s", res.Capacity(), res.ID(), iv),
				ConflictsWith: conflictPeers(d.Conflicts, later),
			}, nil
		}
	}

	r = withStatus(r, status)
	if err := tx.Reservations().Create(ctx, r); err != nil {
		return RecordResult{}, err
	}
	return RecordResult{Outcome: OutcomeInserted}, nil
}

// batchPositions maps the seed id of every keyed record to its first position in the batch.
func batchPositions(records []ReservationRecord) map[uuid.UUID]int {
	positions := make(map[uuid.UUID]int, len(records))
	for i, rec := range records {
		key := strings.TrimSpace(rec.Key)
		if key == "" {
			continue
		}
		id := reservation.SeedID(key)
		if _, seen := positions[id]; !seen {
			positions[id] = i
		}
	}
	return positions
}

func laterInBatch(positions map[uuid.UUID]int, current int) func(uuid.UUID) bool {
	return func(id uuid.UUID) bool {
		pos, ok := positions[id]
		return ok && pos > current
	}
}

// conflictPeers names the reservations a rejected record collided with. Peers stored by
// records later in the batch are left out, so a re-run reports the same peers as the run
// that first admitted them. If only such peers remain they are all reported.
func conflictPeers(conflicts []*reservation.Reservation, later func(uuid.UUID) bool) []string {
	peers := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if !later(c.ID()) {
			peers = append(peers, c.ID().String())
		}
	}
	if len(peers) > 0 {
		return peers
	}
	for _, c := range conflicts {
		peers = append(peers, c.ID().String())
	}
	return peers
}

// withStatus rebuilds a freshly created pending reservation in the imported status.
func withStatus(r *reservation.Reservation, status reservation.Status) *reservation.Reservation {
	if status == r.Status() {
		return r
	}
	var returnedAt *time.Time
	if status == reservation.StatusCompleted {
		t := r.DateTo()
		returnedAt = &t
	}
	return reservation.ReconstructReservation(
		r.ID(), r.ResourceID(), r.RequesterID(), r.Interval(), status,
		r.TotalPrice(), returnedAt, r.CreatedAt(), r.LastUpdatedAt(),
	)
}

func invariantViolation(err error) RecordResult {
	return RecordResult{Outcome: OutcomeRejectedInvariantViolation, Reason: err.Error()}
}

func insertedOrSkipped(inserted bool) Outcome {
	if inserted {
		return OutcomeInserted
	}
	return OutcomeSkippedDuplicate
}
