package errs

import "errors"

// Categories every failure surfaced by the engine falls into. Specific errors carry
// exactly one of these so callers can branch on either.
var (
	// rejected before any store access, never retried
	ErrInvalidArgument = errors.New("invalid argument")
	// resource, requester or reservation absent
	ErrNotFound = errors.New("not found")
	// capacity would be exceeded; final business outcome
	ErrConflict = errors.New("conflict")
	// lost a low-level race; safe to retry the whole call
	ErrAborted = errors.New("aborted")
)

type categorized struct {
	msg      string
	category error
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Is(target error) bool { return target == e.category }

// Category declares a specific sentinel belonging to category. Messages must be unique:
// two sentinels with the same text are indistinguishable once they cross a Mark.
func Category(category error, msg string) error {
	return &categorized{msg: msg, category: category}
}

// CategoryOf reports which category err belongs to, or nil for unclassified errors.
func CategoryOf(err error) error {
	for _, c := range []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrAborted} {
		if Is(err, c) {
			return c
		}
	}
	return nil
}
