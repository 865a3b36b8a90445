//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now   = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	feb10 = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	feb13 = time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
)

func newPending(t *testing.T) *reservation.Reservation {
	t.Helper()
	r, err := reservation.NewReservation(uuid.New(), "R1", "guest-a", reservation.MustInterval(feb10, feb13), reservation.Money{}, now)
	require.NoError(t, err)
	return r
}

func TestNewInterval(t *testing.T) {
	testCases := []struct {
		name    string
		from    time.Time
		to      time.Time
		wantErr bool
	}{
		{name: "valid", from: feb10, to: feb13},
		{name: "zero length", from: feb10, to: feb10, wantErr: true},
		{name: "reversed", from: feb13, to: feb10, wantErr: true},
		{name: "missing from", to: feb13, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := reservation.NewInterval(tc.from, tc.to)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, reservation.ErrInvalidInterval))
				assert.True(t, errs.Is(err, errs.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 72*time.Hour, iv.Duration())
			assert.Equal(t, "[2026-02-10T00:00:00Z,2026-02-13T00:00:00Z)", iv.String())
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 5, h, 0, 0, 0, time.UTC) }
	base := reservation.MustInterval(at(10), at(11))

	assert.False(t, base.Overlaps(reservation.MustInterval(at(11), at(12))), "adjacent after")
	assert.False(t, base.Overlaps(reservation.MustInterval(at(9), at(10))), "adjacent before")
	assert.True(t, base.Overlaps(reservation.MustInterval(at(9), at(12))), "covering")
	assert.True(t, base.Overlaps(reservation.MustInterval(at(10), at(11))), "identical")
	assert.True(t, base.Contains(at(10)))
	assert.False(t, base.Contains(at(11)))
}

func TestParseStatus(t *testing.T) {
	st, err := reservation.ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, st)

	_, err = reservation.ParseStatus("checked-in")
	require.Error(t, err)
	assert.True(t, errs.Is(err, reservation.ErrInvalidStatus))
	assert.True(t, errs.Is(err, errs.ErrInvalidArgument))
}

func TestCanTransition(t *testing.T) {
	legal := map[reservation.Status][]reservation.Status{
		reservation.StatusPending:   {reservation.StatusConfirmed, reservation.StatusCancelled},
		reservation.StatusConfirmed: {reservation.StatusCompleted, reservation.StatusCancelled, reservation.StatusOverdue},
		reservation.StatusOverdue:   {reservation.StatusCompleted, reservation.StatusCancelled},
	}
	all := []reservation.Status{
		reservation.StatusPending, reservation.StatusConfirmed, reservation.StatusCompleted,
		reservation.StatusCancelled, reservation.StatusOverdue,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range legal[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, reservation.CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, reservation.RequiresAvailabilityCheck(reservation.StatusPending, reservation.StatusConfirmed))
	assert.False(t, reservation.RequiresAvailabilityCheck(reservation.StatusConfirmed, reservation.StatusOverdue))
}

func TestNewReservation(t *testing.T) {
	iv := reservation.MustInterval(feb10, feb13)

	t.Run("starts pending", func(t *testing.T) {
		r, err := reservation.NewReservation(uuid.Nil, " R1 ", "guest-a", iv, reservation.Money{}, now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, r.ID())
		assert.Equal(t, "R1", r.ResourceID())
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.False(t, r.IsOccupying())
		assert.Equal(t, now, r.CreatedAt())
		assert.Equal(t, now, r.LastUpdatedAt())
	})

	t.Run("missing requester", func(t *testing.T) {
		_, err := reservation.NewReservation(uuid.Nil, "R1", "", iv, reservation.Money{}, now)
		assert.True(t, errs.Is(err, reservation.ErrEmptyRequesterID))
	})

	t.Run("missing interval", func(t *testing.T) {
		_, err := reservation.NewReservation(uuid.Nil, "R1", "guest-a", reservation.Interval{}, reservation.Money{}, now)
		assert.True(t, errs.Is(err, reservation.ErrInvalidInterval))
	})
}

func TestLifecycle(t *testing.T) {
	later := now.Add(time.Hour)

	t.Run("confirm twice is a no-op", func(t *testing.T) {
		r := newPending(t)
		changed, err := r.Confirm(later)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = r.Confirm(later.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, later, r.LastUpdatedAt())
	})

	t.Run("cancel from pending and confirmed", func(t *testing.T) {
		r := newPending(t)
		changed, err := r.Cancel(later)
		require.NoError(t, err)
		assert.True(t, changed)

		r = newPending(t)
		_, _ = r.Confirm(later)
		changed, err = r.Cancel(later)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, reservation.StatusCancelled, r.Status())
	})

	t.Run("complete records return", func(t *testing.T) {
		r := newPending(t)
		_, _ = r.Confirm(later)
		changed, err := r.Complete(feb13)
		require.NoError(t, err)
		assert.True(t, changed)
		require.NotNil(t, r.ReturnedAt())
		assert.Equal(t, feb13, *r.ReturnedAt())
		assert.True(t, r.IsOccupying())
	})

	t.Run("completed is terminal", func(t *testing.T) {
		r := newPending(t)
		_, _ = r.Confirm(later)
		_, _ = r.Complete(later)

		_, err := r.Cancel(later)
		require.Error(t, err)
		assert.True(t, errs.Is(err, reservation.ErrInvalidTransition))
		assert.True(t, errs.Is(err, errs.ErrInvalidArgument))
		assert.Equal(t, reservation.StatusCompleted, r.Status())
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		r := newPending(t)
		_, err := r.Complete(later)
		assert.True(t, errs.Is(err, reservation.ErrInvalidTransition))
		assert.Nil(t, r.ReturnedAt())
	})
}

func TestMarkOverdueIfDue(t *testing.T) {
	confirmed := func() *reservation.Reservation {
		r := newPending(t)
		_, err := r.Confirm(now)
		require.NoError(t, err)
		return r
	}

	testCases := []struct {
		name           string
		setup          func() *reservation.Reservation
		at             time.Time
		requiresReturn bool
		wantChanged    bool
		wantStatus     reservation.Status
	}{
		{name: "due at dateTo", setup: confirmed, at: feb13, requiresReturn: true, wantChanged: true, wantStatus: reservation.StatusOverdue},
		{name: "before dateTo", setup: confirmed, at: feb13.Add(-time.Second), requiresReturn: true, wantStatus: reservation.StatusConfirmed},
		{name: "resource needs no return", setup: confirmed, at: feb13.Add(time.Hour), wantStatus: reservation.StatusConfirmed},
		{name: "pending is ignored", setup: func() *reservation.Reservation { return newPending(t) }, at: feb13, requiresReturn: true, wantStatus: reservation.StatusPending},
		{
			name: "already overdue",
			setup: func() *reservation.Reservation {
				r := confirmed()
				r.MarkOverdueIfDue(feb13, true)
				return r
			},
			at: feb13.Add(time.Hour), requiresReturn: true, wantStatus: reservation.StatusOverdue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.setup()
			assert.Equal(t, tc.wantChanged, r.MarkOverdueIfDue(tc.at, tc.requiresReturn))
			assert.Equal(t, tc.wantStatus, r.Status())
		})
	}
}

func TestSeedID(t *testing.T) {
	assert.Equal(t, reservation.SeedID("booking-1"), reservation.SeedID(" booking-1 "))
	assert.NotEqual(t, reservation.SeedID("booking-1"), reservation.SeedID("booking-2"))
	assert.Equal(t, uuid.Version(5), reservation.SeedID("booking-1").Version())
}

func TestClonesAreIndependent(t *testing.T) {
	r := newPending(t)
	cp := r.Clone()
	_, err := cp.Confirm(now)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPending, r.Status())
}

func TestDefaultPriceCalculator(t *testing.T) {
	nightly, err := resource.NewResource("listing-1", 1, false, resource.Attributes{"price": "$120.50"}, now)
	require.NoError(t, err)
	free, err := resource.NewResource("slot-1", 1, false, nil, now)
	require.NoError(t, err)
	broken, err := resource.NewResource("listing-2", 1, false, resource.Attributes{"price": "call us"}, now)
	require.NoError(t, err)

	pc := reservation.NewDefaultPriceCalculator()

	testCases := []struct {
		name      string
		res       *resource.Resource
		interval  reservation.Interval
		wantCents int64
		wantErr   bool
	}{
		{name: "three nights", res: nightly, interval: reservation.MustInterval(feb10, feb13), wantCents: 36150},
		{name: "partial night counts", res: nightly, interval: reservation.MustInterval(feb10, feb10.Add(25*time.Hour)), wantCents: 24100},
		{name: "no price attribute", res: free, interval: reservation.MustInterval(feb10, feb13)},
		{name: "unparseable price", res: broken, interval: reservation.MustInterval(feb10, feb13), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := pc.CalculatePrice(tc.res, tc.interval)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCents, m.Cents())
		})
	}
}

func TestFactory(t *testing.T) {
	clk := clock.NewMockClock(now)
	res, err := resource.NewResource("listing-1", 1, false, resource.Attributes{"price": 100}, now)
	require.NoError(t, err)

	f := reservation.NewFactory(clk, reservation.NewDefaultPriceCalculator())
	r, err := f.CreatePending(res, "guest-a", reservation.MustInterval(feb10, feb13))
	require.NoError(t, err)
	assert.Equal(t, int64(30000), r.TotalPrice().Cents())
	assert.Equal(t, reservation.StatusPending, r.Status())
	assert.Equal(t, now, r.CreatedAt())

	id := reservation.SeedID("import-7")
	r, err = f.CreateWithID(id, res, "guest-b", reservation.MustInterval(feb10, feb13))
	require.NoError(t, err)
	assert.Equal(t, id, r.ID())
}
