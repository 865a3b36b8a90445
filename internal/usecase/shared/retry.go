package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"

	"reservation-engine/internal/pkg/errs"
)

var ErrMaxRetriesExceeded = errs.Category(errs.ErrAborted, "operation aborted after max retries")

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 50 * time.Millisecond}
}

// WithRetry re-runs fn while it fails with an Aborted error, backing off exponentially
// with jitter. Every other error, including Conflict, is returned immediately.
func WithRetry(ctx context.Context, logger *slog.Logger, policy RetryPolicy, op string, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errs.Is(err, errs.ErrAborted) || ctx.Err() != nil {
			return err
		}
		if attempt == policy.MaxRetries {
			break
		}

		waitTime := CalculateBackoff(attempt, policy.BaseDelay)
		logger.Warn("retrying operation due to retryable error",
			"operation", op,
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return errs.Mark(errs.Wrap(ctx.Err(), op), errs.ErrAborted)
		case <-time.After(waitTime):
		}
	}

	logger.Error("operation failed after max retries",
		"operation", op,
		"attempts", policy.MaxRetries+1,
		"error", err.Error())
	return errs.Mark(errs.Wrap(err, op), ErrMaxRetriesExceeded)
}

func CalculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}
