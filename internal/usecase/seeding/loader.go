package seeding

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/errs"
)

var ErrMalformedSeedFile = errs.Category(errs.ErrInvalidArgument, "malformed seed file")

// seedFile mirrors the loosely typed exports the seed data comes from: numbers may be
// strings, dates may be RFC 3339, plain dates or {"$date": ...} wrappers.
type seedFile struct {
	Requesters []struct {
		ID          looseString `json:"id"`
		DisplayName string      `json:"name"`
	} `json:"requesters"`
	Resources []struct {
		ID             looseString    `json:"id"`
		Capacity       looseInt       `json:"capacity"`
		RequiresReturn bool           `json:"requiresReturn"`
		Attributes     map[string]any `json:"attributes"`
	} `json:"resources"`
	Reservations []struct {
		Key         looseString `json:"key"`
		ResourceID  looseString `json:"resourceId"`
		RequesterID looseString `json:"requesterId"`
		DateFrom    looseTime   `json:"dateFrom"`
		DateTo      looseTime   `json:"dateTo"`
		Status      string      `json:"status"`
	} `json:"reservations"`
}

func LoadSeedFile(path string) (*SeedInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrapf(err, "open seed file %s", path)
	}
	defer f.Close()
	return DecodeSeed(f)
}

func DecodeSeed(r io.Reader) (*SeedInput, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw seedFile
	if err := dec.Decode(&raw); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "decode seed document"), ErrMalformedSeedFile)
	}

	in := &SeedInput{
		Requesters:   make([]RequesterRecord, 0, len(raw.Requesters)),
		Resources:    make([]ResourceRecord, 0, len(raw.Resources)),
		Reservations: make([]ReservationRecord, 0, len(raw.Reservations)),
	}
	for _, rq := range raw.Requesters {
		in.Requesters = append(in.Requesters, RequesterRecord{ID: string(rq.ID), DisplayName: rq.DisplayName})
	}
	for _, rs := range raw.Resources {
		in.Resources = append(in.Resources, ResourceRecord{
			ID:             string(rs.ID),
			Capacity:       int(rs.Capacity),
			RequiresReturn: rs.RequiresReturn,
			Attributes:     resource.Attributes(rs.Attributes),
		})
	}
	for _, rv := range raw.Reservations {
		in.Reservations = append(in.Reservations, ReservationRecord{
			Key:         string(rv.Key),
			ResourceID:  string(rv.ResourceID),
			RequesterID: string(rv.RequesterID),
			DateFrom:    time.Time(rv.DateFrom),
			DateTo:      time.Time(rv.DateTo),
			Status:      rv.Status,
		})
	}
	return in, nil
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(b)
	return nil
}

// looseInt accepts 3, 3.0 or "3". Anything unparseable becomes 0 and is rejected later
// as an invalid capacity.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseInt(f)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// looseTime leaves the zero time for values it cannot read; the interval check then
// reports the record instead of failing the whole file.
type looseTime time.Time

func (t *looseTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		b = wrapped.Date
	}

	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = looseTime(parsed.UTC())
			return nil
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*t = looseTime(time.UnixMilli(ms).UTC())
		return nil
	}
	*t = looseTime(time.Time{})
	return nil
}
