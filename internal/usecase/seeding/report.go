package seeding

type Outcome string

const (
	OutcomeInserted                     Outcome = "inserted"
	OutcomeSkippedDuplicate             Outcome = "skipped_duplicate"
	OutcomeRejectedReferentialIntegrity Outcome = "rejected_referential_integrity"
	OutcomeRejectedInvariantViolation   Outcome = "rejected_invariant_violation"
)

type RecordKind string

const (
	KindRequester   RecordKind = "requester"
	KindResource    RecordKind = "resource"
	KindReservation RecordKind = "reservation"
)

type RecordResult struct {
	Kind  RecordKind `json:"kind"`
	Index int        `json:"index"`
	// Key is the record's natural id in the input.
	Key string `json:"key"`
	// ID is the stored identifier (the derived UUID for reservations).
	ID            string   `json:"id,omitempty"`
	Outcome       Outcome  `json:"outcome"`
	Reason        string   `json:"reason,omitempty"`
	ConflictsWith []string `json:"conflicts_with,omitempty"`
}

type Report struct {
	Results []RecordResult `json:"results"`
}

func (r *Report) add(res RecordResult) {
	r.Results = append(r.Results, res)
}

func (r *Report) Count(kind RecordKind, outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == kind && res.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *Report) Inserted() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeInserted {
			n++
		}
	}
	return n
}

// Rejections is the integrity part of the report. Re-running the same input yields the
// same rejections.
func (r *Report) Rejections() []RecordResult {
	out := make([]RecordResult, 0)
	for _, res := range r.Results {
		if res.Outcome == OutcomeRejectedReferentialIntegrity || res.Outcome == OutcomeRejectedInvariantViolation {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) HasRejections() bool {
	return len(r.Rejections()) > 0
}

type Summary struct {
	Inserted                     int `json:"inserted"`
	SkippedDuplicate             int `json:"skipped_duplicate"`
	RejectedReferentialIntegrity int `json:"rejected_referential_integrity"`
	RejectedInvariantViolation   int `json:"rejected_invariant_violation"`
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeInserted:
			s.Inserted++
		case OutcomeSkippedDuplicate:
			s.SkippedDuplicate++
		case OutcomeRejectedReferentialIntegrity:
			s.RejectedReferentialIntegrity++
		case OutcomeRejectedInvariantViolation:
			s.RejectedInvariantViolation++
		}
	}
	return s
}
