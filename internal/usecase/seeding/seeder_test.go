//go:build unit

package seeding_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/usecase/seeding"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
}

func newSeeder(store *memstore.Store) seeding.Seeder {
	clk := clock.NewMockClock(day(1))
	factory := reservation.NewFactory(clk, reservation.NewDefaultPriceCalculator())
	return seeding.NewSeeder(store, factory, clk, shared.RetryPolicy{BaseDelay: time.Millisecond}, nil)
}

func sampleInput() seeding.SeedInput {
	return seeding.SeedInput{
		Requesters: []seeding.RequesterRecord{{ID: "guest-a", DisplayName: "Ana"}, {ID: "guest-b"}},
		Resources: []seeding.ResourceRecord{
			{ID: "listing-1", Capacity: 1},
			{ID: "flight-1", Capacity: 2},
			{ID: "broken", Capacity: 0},
		},
		Reservations: []seeding.ReservationRecord{
			{Key: "b1", ResourceID: "listing-1", RequesterID: "guest-a", DateFrom: day(10), DateTo: day(13)},
			{Key: "b2", ResourceID: "listing-1", RequesterID: "guest-b", DateFrom: day(12), DateTo: day(14)},
			{Key: "b3", ResourceID: "listing-1", RequesterID: "guest-b", DateFrom: day(13), DateTo: day(15)},
			{Key: "b4", ResourceID: "ghost", RequesterID: "guest-a", DateFrom: day(1), DateTo: day(2)},
			{Key: "b5", ResourceID: "listing-1", RequesterID: "guest-a", DateFrom: day(20), DateTo: day(18)},
			{Key: "b1", ResourceID: "listing-1", RequesterID: "guest-a", DateFrom: day(10), DateTo: day(13)},
			{Key: "f1", ResourceID: "flight-1", RequesterID: "guest-a", DateFrom: day(3), DateTo: day(4)},
			{Key: "f2", ResourceID: "flight-1", RequesterID: "guest-b", DateFrom: day(3), DateTo: day(4)},
			{Key: "f3", ResourceID: "flight-1", RequesterID: "guest-b", DateFrom: day(3), DateTo: day(4)},
			{Key: "f4", ResourceID: "flight-1", RequesterID: "guest-b", DateFrom: day(3), DateTo: day(4), Status: "cancelled"},
			{Key: "x1", ResourceID: "flight-1", RequesterID: "guest-b", DateFrom: day(5), DateTo: day(6), Status: "checked-in"},
		},
	}
}

func outcomes(report *seeding.Report, kind seeding.RecordKind) map[string]seeding.Outcome {
	out := map[string]seeding.Outcome{}
	for _, r := range report.Results {
		if r.Kind != kind {
			continue
		}
		if _, seen := out[r.Key]; !seen {
			out[r.Key] = r.Outcome
		}
	}
	return out
}

func TestSeed_Outcomes(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	report, err := newSeeder(store).Seed(ctx, sampleInput())
	require.NoError(t, err)

	assert.Equal(t, map[string]seeding.Outcome{
		"listing-1": seeding.OutcomeInserted,
		"flight-1":  seeding.OutcomeInserted,
		"broken":    seeding.OutcomeRejectedInvariantViolation,
	}, outcomes(report, seeding.KindResource))

	assert.Equal(t, map[string]seeding.Outcome{
		"b1": seeding.OutcomeInserted,
		"b2": seeding.OutcomeRejectedInvariantViolation,
		"b3": seeding.OutcomeInserted,
		"b4": seeding.OutcomeRejectedReferentialIntegrity,
		"b5": seeding.OutcomeRejectedInvariantViolation,
		"f1": seeding.OutcomeInserted,
		"f2": seeding.OutcomeInserted,
		"f3": seeding.OutcomeRejectedInvariantViolation,
		"f4": seeding.OutcomeInserted,
		"x1": seeding.OutcomeRejectedInvariantViolation,
	}, outcomes(report, seeding.KindReservation))

	assert.Equal(t, 1, report.Count(seeding.KindReservation, seeding.OutcomeSkippedDuplicate), "repeated key in one batch")

	for _, r := range report.Results {
		if r.Key == "b2" {
			assert.Equal(t, []string{reservation.SeedID("b1").String()}, r.ConflictsWith)
		}
	}
}

func TestSeed_OrphanNeverStored(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := newSeeder(store).Seed(ctx, sampleInput())
	require.NoError(t, err)

	_, err = store.FindReservation(ctx, reservation.SeedID("b4"))
	assert.Error(t, err)

	stored, err := store.FindReservation(ctx, reservation.SeedID("b1"))
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, stored.Status())
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seeder := newSeeder(store)

	first, err := seeder.Seed(ctx, sampleInput())
	require.NoError(t, err)
	require.Positive(t, first.Inserted())

	second, err := seeder.Seed(ctx, sampleInput())
	require.NoError(t, err)

	assert.Zero(t, second.Inserted())
	if diff := cmp.Diff(first.Rejections(), second.Rejections()); diff != "" {
		t.Errorf("integrity report changed between runs (-first +second):\n%s", diff)
	}
}

func TestSeed_RerunReportsSamePeers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seeder := newSeeder(store)

	in := seeding.SeedInput{
		Resources: []seeding.ResourceRecord{{ID: "room", Capacity: 1}},
		Reservations: []seeding.ReservationRecord{
			{Key: "early", ResourceID: "room", RequesterID: "g", DateFrom: day(1), DateTo: day(3)},
			{Key: "squeezed", ResourceID: "room", RequesterID: "g", DateFrom: day(2), DateTo: day(4)},
			{Key: "late", ResourceID: "room", RequesterID: "g", DateFrom: day(3), DateTo: day(5)},
		},
	}
	want := []string{reservation.SeedID("early").String()}

	for run := 1; run <= 3; run++ {
		report, err := seeder.Seed(ctx, in)
		require.NoError(t, err)

		rejected := report.Rejections()
		require.Len(t, rejected, 1, "run %d", run)
		assert.Equal(t, "squeezed", rejected[0].Key)
		assert.Equal(t, want, rejected[0].ConflictsWith, "run %d", run)
	}
}

func TestSeed_LaterBatchPeerStillBlocks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seeder := newSeeder(store)
	late := seeding.ReservationRecord{Key: "late", ResourceID: "room", RequesterID: "g", DateFrom: day(3), DateTo: day(5)}

	_, err := seeder.Seed(ctx, seeding.SeedInput{
		Resources:    []seeding.ResourceRecord{{ID: "room", Capacity: 1}},
		Reservations: []seeding.ReservationRecord{late},
	})
	require.NoError(t, err)

	report, err := seeder.Seed(ctx, seeding.SeedInput{
		Reservations: []seeding.ReservationRecord{
			{Key: "newcomer", ResourceID: "room", RequesterID: "g", DateFrom: day(4), DateTo: day(6)},
			late,
		},
	})
	require.NoError(t, err)

	got := outcomes(report, seeding.KindReservation)
	assert.Equal(t, seeding.OutcomeRejectedInvariantViolation, got["newcomer"])
	assert.Equal(t, seeding.OutcomeSkippedDuplicate, got["late"])
	require.Len(t, report.Rejections(), 1)
	assert.Equal(t, []string{reservation.SeedID("late").String()}, report.Rejections()[0].ConflictsWith)

	_, err = store.FindReservation(ctx, reservation.SeedID("newcomer"))
	assert.Error(t, err)
}

func TestSeed_BatchCapacityIsTransitive(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	in := seeding.SeedInput{
		Resources: []seeding.ResourceRecord{{ID: "room", Capacity: 2}},
		Reservations: []seeding.ReservationRecord{
			{Key: "a", ResourceID: "room", RequesterID: "g", DateFrom: day(1), DateTo: day(5)},
			{Key: "b", ResourceID: "room", RequesterID: "g", DateFrom: day(2), DateTo: day(3)},
			{Key: "c", ResourceID: "room", RequesterID: "g", DateFrom: day(3), DateTo: day(4)},
			{Key: "d", ResourceID: "room", RequesterID: "g", DateFrom: day(2), DateTo: day(4)},
		},
	}

	report, err := newSeeder(store).Seed(ctx, in)
	require.NoError(t, err)

	got := outcomes(report, seeding.KindReservation)
	assert.Equal(t, seeding.OutcomeInserted, got["a"])
	assert.Equal(t, seeding.OutcomeInserted, got["b"])
	assert.Equal(t, seeding.OutcomeInserted, got["c"])
	assert.Equal(t, seeding.OutcomeRejectedInvariantViolation, got["d"])
}

func TestDecodeSeed(t *testing.T) {
	doc := `{
		"requesters": [{"id": 1001, "name": "Ana"}],
		"resources": [
			{"id": "listing-1", "capacity": "2", "attributes": {"price": "$129.90"}},
			{"id": 42, "capacity": 1, "requiresReturn": true, "attributes": {"price": 15}}
		],
		"reservations": [
			{"key": "b1", "resourceId": "listing-1", "requesterId": 1001, "dateFrom": "2026-02-10", "dateTo": "2026-02-13T00:00:00Z"},
			{"key": "b2", "resourceId": 42, "requesterId": "1001", "dateFrom": {"$date": "2026-02-01T10:00:00Z"}, "dateTo": {"$date": 1770120000000}, "status": "completed"}
		]
	}`

	in, err := seeding.DecodeSeed(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, in.Requesters, 1)
	assert.Equal(t, "1001", in.Requesters[0].ID)

	require.Len(t, in.Resources, 2)
	assert.Equal(t, 2, in.Resources[0].Capacity)
	assert.Equal(t, "42", in.Resources[1].ID)
	cents, ok, err := in.Resources[0].Attributes.PriceCents("price")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12990), cents)
	cents, _, err = in.Resources[1].Attributes.PriceCents("price")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), cents)

	require.Len(t, in.Reservations, 2)
	assert.Equal(t, day(10), in.Reservations[0].DateFrom)
	assert.Equal(t, day(13), in.Reservations[0].DateTo)
	assert.Equal(t, "1001", in.Reservations[0].RequesterID)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), in.Reservations[1].DateFrom)
	assert.Equal(t, time.UnixMilli(1770120000000).UTC(), in.Reservations[1].DateTo)
	assert.Equal(t, "completed", in.Reservations[1].Status)
}

func TestDecodeSeed_Malformed(t *testing.T) {
	_, err := seeding.DecodeSeed(strings.NewReader(`{"resources": [`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode seed document"))
}
