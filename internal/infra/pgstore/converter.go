package pgstore

import (
	"bytes"
	"encoding/json"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/pgconv"
)

func resourceFromRow(row ResourceRow) (*resource.Resource, error) {
	attrs := resource.Attributes{}
	if len(row.Attributes) > 0 {
		dec := json.NewDecoder(bytes.NewReader(row.Attributes))
		dec.UseNumber()
		if err := dec.Decode(&attrs); err != nil {
			return nil, errs.Wrapf(err, "decode attributes of resource %s", row.ID)
		}
	}
	return resource.ReconstructResource(
		row.ID,
		int(row.Capacity),
		row.RequiresReturn,
		attrs,
		pgconv.TimePtrFromPgtype(row.DeletedAt),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}

func resourceToParams(res *resource.Resource) (InsertResourceParams, error) {
	attrs, err := json.Marshal(res.Attributes().Clone())
	if err != nil {
		return InsertResourceParams{}, errs.Wrapf(err, "encode attributes of resource %s", res.ID())
	}
	return InsertResourceParams{
		ID:             res.ID(),
		Capacity:       int32(res.Capacity()), // #nosec G115 -- capacity is validated positive on construction
		RequiresReturn: res.RequiresReturn(),
		Attributes:     attrs,
		CreatedAt:      pgconv.TimeToPgtype(res.CreatedAt()),
		UpdatedAt:      pgconv.TimeToPgtype(res.UpdatedAt()),
	}, nil
}

func reservationFromRow(row ReservationRow) (*reservation.Reservation, error) {
	iv, err := reservation.NewInterval(pgconv.TimeFromPgtype(row.DateFrom), pgconv.TimeFromPgtype(row.DateTo))
	if err != nil {
		return nil, err
	}
	status, err := reservation.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}
	price, err := reservation.NewMoney(row.TotalPriceCents)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		pgconv.UUIDFromPgtype(row.ID),
		row.ResourceID,
		row.RequesterID,
		iv,
		status,
		price,
		pgconv.TimePtrFromPgtype(row.ReturnedAt),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.LastUpdatedAt),
	), nil
}

func reservationsFromRows(rows []ReservationRow) ([]*reservation.Reservation, error) {
	out := make([]*reservation.Reservation, 0, len(rows))
	for _, row := range rows {
		r, err := reservationFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func reservationToRow(r *reservation.Reservation) ReservationRow {
	return ReservationRow{
		ID:              pgconv.UUIDToPgtype(r.ID()),
		ResourceID:      r.ResourceID(),
		RequesterID:     r.RequesterID(),
		DateFrom:        pgconv.TimeToPgtype(r.DateFrom()),
		DateTo:          pgconv.TimeToPgtype(r.DateTo()),
		Status:          r.Status().String(),
		TotalPriceCents: r.TotalPrice().Cents(),
		ReturnedAt:      pgconv.TimePtrToPgtype(r.ReturnedAt()),
		CreatedAt:       pgconv.TimeToPgtype(r.CreatedAt()),
		LastUpdatedAt:   pgconv.TimeToPgtype(r.LastUpdatedAt()),
	}
}

func occupyingStatuses() []string {
	out := make([]string, len(reservation.OccupyingStatuses))
	for i, s := range reservation.OccupyingStatuses {
		out[i] = s.String()
	}
	return out
}
