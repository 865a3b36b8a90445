package infra

import (
	"errors"
	"log/slog"

	"reservation-engine/internal/pkg/errs"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies a store failure and logs it on slogger (slog.Default when nil).
// kind defaults to KindDBFailure. Retryable failures are additionally marked Aborted so the
// admission layer retries them.
func WrapRepoErr(slogger *slog.Logger, msg string, err error, kind ...RepositoryErrorKind) error {
	if slogger == nil {
		slogger = slog.Default()
	}
	k := KindDBFailure
	if len(kind) > 0 {
		k = kind[0]
	}

	if k != KindNotFound {
		logArgs := []any{slog.String("kind", string(k))}
		if err != nil {
			logArgs = append(logArgs, slog.String("error", err.Error()))
		}
		if k == KindRetryable {
			slogger.Warn("Repository error: "+msg, logArgs...)
		} else {
			slogger.Error("Repository error: "+msg, logArgs...)
		}
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	var out error = RepositoryError{Kind: k, msg: msg, err: err}
	switch k {
	case KindRetryable:
		out = errs.Mark(out, errs.ErrAborted)
	case KindNotFound:
		out = errs.Mark(out, errs.ErrNotFound)
	}
	return out
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound     RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure    RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey RepositoryErrorKind = "DUPLICATE_KEY"
	KindRetryable    RepositoryErrorKind = "RETRYABLE"
)
