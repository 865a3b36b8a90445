// Package memstore keeps resources and reservations in process memory. It backs the
// memory driver and the use-case tests.
package memstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type requesterRow struct {
	displayName string
	createdAt   time.Time
}

type Store struct {
	mu           sync.RWMutex
	resources    map[string]*resource.Resource
	reservations map[uuid.UUID]*reservation.Reservation
	byResource   map[string][]uuid.UUID
	requesters   map[string]requesterRow

	locksMu  sync.Mutex
	locks    map[string]chan struct{}
	lockWait time.Duration

	logger *slog.Logger
}

type Option func(*Store)

// WithLockWait bounds how long WithinResource waits for a busy resource before giving
// up with an Aborted error. Zero waits until ctx is done.
func WithLockWait(d time.Duration) Option {
	return func(s *Store) { s.lockWait = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func New(opts ...Option) *Store {
	s := &Store{
		resources:    map[string]*resource.Resource{},
		reservations: map[uuid.UUID]*reservation.Reservation{},
		byResource:   map[string][]uuid.UUID{},
		requesters:   map[string]requesterRow{},
		locks:        map[string]chan struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

var errLockWaitExceeded = errs.Category(errs.ErrAborted, "timed out waiting for resource lock")

func (s *Store) lockFor(resourceID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[resourceID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[resourceID] = ch
	}
	return ch
}

func (s *Store) WithinResource(ctx context.Context, resourceID string, fn func(ctx context.Context, tx shared.Tx) error) error {
	lock := s.lockFor(resourceID)

	var timeout <-chan time.Time
	if s.lockWait > 0 {
		t := time.NewTimer(s.lockWait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return errs.Mark(errs.Wrap(ctx.Err(), "waiting for resource "+resourceID), errs.ErrAborted)
	case <-timeout:
		return errs.Wrapf(errLockWaitExceeded, "resource %s", resourceID)
	}
	defer func() { <-lock }()

	// The body is not interrupted once the section is held.
	return s.run(context.WithoutCancel(ctx), fn)
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, fn)
}

func (s *Store) CommandReads() shared.CommandReads {
	return commandReads{s: s}
}

// run stages every write in a tx and applies them together only when fn succeeds.
func (s *Store) run(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := newMemTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, res := range tx.resources {
		s.resources[id] = res
	}
	for id, r := range tx.reservations {
		if _, exists := s.reservations[id]; !exists {
			s.byResource[r.ResourceID()] = append(s.byResource[r.ResourceID()], id)
		}
		s.reservations[id] = r
	}
	for id, row := range tx.requesters {
		s.requesters[id] = row
	}
}

func (s *Store) resourceByID(id string) (*resource.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resources[id]
	if !ok {
		return nil, false
	}
	return cloneResource(res), true
}

func (s *Store) reservationByID(id uuid.UUID) (*reservation.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (s *Store) reservationsOf(resourceID string, keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*reservation.Reservation, 0)
	for _, id := range s.byResource[resourceID] {
		r := s.reservations[id]
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sortByStart(out)
	return out
}

func (s *Store) occupying(resourceID string, iv reservation.Interval) []*reservation.Reservation {
	return s.reservationsOf(resourceID, func(r *reservation.Reservation) bool {
		return r.IsOccupying() && r.Interval().Overlaps(iv)
	})
}

// Exists implements shared.RequesterDirectory over the requesters loaded by the seeder.
func (s *Store) Exists(_ context.Context, requesterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.requesters[requesterID]
	return ok, nil
}

func cloneResource(res *resource.Resource) *resource.Resource {
	return resource.ReconstructResource(
		res.ID(),
		res.Capacity(),
		res.RequiresReturn(),
		res.Attributes().Clone(),
		res.DeletedAt(),
		res.CreatedAt(),
		res.UpdatedAt(),
	)
}

func sortByStart(rs []*reservation.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].DateFrom().Equal(rs[j].DateFrom()) {
			return rs[i].ID().String() < rs[j].ID().String()
		}
		return rs[i].DateFrom().Before(rs[j].DateFrom())
	})
}

func (s *Store) notFound(what string) error {
	return infra.WrapRepoErr(s.logger, what+" not found", nil, infra.KindNotFound)
}
