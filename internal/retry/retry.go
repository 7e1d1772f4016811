// Package retry implements the bounded retry policy used around every
// external call: a fixed number of attempts with fixed backoff, applied to
// transient failures only. Permanent failures (validation, auth) propagate
// immediately.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
)

// Policy is an explicit retry policy composed around a call site.
type Policy struct {
	Attempts int           // total attempts, including the first
	Backoff  time.Duration // fixed pause between attempts
}

// Default mirrors the reference policy: 3 attempts, 2s apart.
func Default() Policy {
	return Policy{Attempts: 3, Backoff: 2 * time.Second}
}

// Do runs fn up to p.Attempts times. Only errors marked transient are
// retried; the context cancels the backoff wait as well as the call.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, op string, fn func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !common.IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		logger.Warn("retry.attempt_failed",
			"op", op, "attempt", attempt, "of", attempts, "error", err)
		select {
		case <-time.After(p.Backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	logger.Error("retry.exhausted", "op", op, "attempts", attempts, "error", err)
	return err
}
