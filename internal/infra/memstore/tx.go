package memstore

import (
	"context"
	"sort"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// memTx overlays staged writes on top of the committed store.
type memTx struct {
	s            *Store
	resources    map[string]*resource.Resource
	reservations map[uuid.UUID]*reservation.Reservation
	requesters   map[string]requesterRow
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:            s,
		resources:    map[string]*resource.Resource{},
		reservations: map[uuid.UUID]*reservation.Reservation{},
		requesters:   map[string]requesterRow{},
	}
}

func (t *memTx) Resources() shared.ResourceRepository       { return resourceRepo{t} }
func (t *memTx) Reservations() shared.ReservationRepository { return reservationRepo{t} }
func (t *memTx) Requesters() shared.RequesterRepository     { return requesterRepo{t} }

type resourceRepo struct{ t *memTx }

func (r resourceRepo) FindByID(_ context.Context, id string) (*resource.Resource, error) {
	if res, ok := r.t.resources[id]; ok {
		return cloneResource(res), nil
	}
	res, ok := r.t.s.resourceByID(id)
	if !ok {
		return nil, r.t.s.notFound("resource")
	}
	return res, nil
}

func (r resourceRepo) InsertIfAbsent(ctx context.Context, res *resource.Resource) (bool, error) {
	if _, err := r.FindByID(ctx, res.ID()); err == nil {
		return false, nil
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return false, err
	}
	r.t.resources[res.ID()] = cloneResource(res)
	return true, nil
}

func (r resourceRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	res.SoftDelete(at)
	r.t.resources[id] = res
	return nil
}

type reservationRepo struct{ t *memTx }

func (r reservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if staged, ok := r.t.reservations[id]; ok {
		return staged.Clone(), nil
	}
	res, ok := r.t.s.reservationByID(id)
	if !ok {
		return nil, r.t.s.notFound("reservation")
	}
	return res, nil
}

func (r reservationRepo) FindOccupying(_ context.Context, resourceID string, iv reservation.Interval) ([]*reservation.Reservation, error) {
	committed := r.t.s.occupying(resourceID, iv)
	if len(r.t.reservations) == 0 {
		return committed, nil
	}

	out := make([]*reservation.Reservation, 0, len(committed))
	for _, c := range committed {
		if _, overridden := r.t.reservations[c.ID()]; !overridden {
			out = append(out, c)
		}
	}
	for _, staged := range r.t.reservations {
		if staged.ResourceID() == resourceID && staged.IsOccupying() && staged.Interval().Overlaps(iv) {
			out = append(out, staged.Clone())
		}
	}
	sortByStart(out)
	return out, nil
}

func (r reservationRepo) Create(ctx context.Context, res *reservation.Reservation) error {
	if _, err := r.FindByID(ctx, res.ID()); err == nil {
		return infra.WrapRepoErr(r.t.s.logger, "reservation already exists", nil, infra.KindDuplicateKey)
	}
	r.t.reservations[res.ID()] = res.Clone()
	return nil
}

func (r reservationRepo) Update(ctx context.Context, res *reservation.Reservation) error {
	if _, err := r.FindByID(ctx, res.ID()); err != nil {
		return err
	}
	r.t.reservations[res.ID()] = res.Clone()
	return nil
}

func (r reservationRepo) FindDueForOverdue(_ context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	s := r.t.s
	s.mu.RLock()
	var due []*reservation.Reservation
	for _, res := range s.reservations {
		owner, ok := s.resources[res.ResourceID()]
		if !ok {
			continue
		}
		if res.IsDue(now, owner.RequiresReturn()) {
			due = append(due, res.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].DateTo().Equal(due[j].DateTo()) {
			return due[i].ID().String() < due[j].ID().String()
		}
		return due[i].DateTo().Before(due[j].DateTo())
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

type requesterRepo struct{ t *memTx }

func (r requesterRepo) InsertIfAbsent(ctx context.Context, id, displayName string, now time.Time) (bool, error) {
	if _, staged := r.t.requesters[id]; staged {
		return false, nil
	}
	if ok, _ := r.t.s.Exists(ctx, id); ok {
		return false, nil
	}
	r.t.requesters[id] = requesterRow{displayName: displayName, createdAt: now}
	return true, nil
}
