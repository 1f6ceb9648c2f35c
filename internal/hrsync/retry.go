package hrsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mfrancani/patrimonio/internal/store"
)

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 5 * time.Second
)

// ErrStoreUnreachable is returned when no transaction could be opened in
// any retry attempt, meaning the database never answered at all.
var ErrStoreUnreachable = errors.New("database unreachable")

// mutator is one event's worth of writes, executed inside a transaction.
// A non-nil error marks the attempt as failed and triggers a retry; business
// conditions (missing rows, disallowed scopes, bad payloads) are reported
// through the Outcome with a nil error and are never retried.
type mutator func(ctx context.Context, tx store.Store) (Outcome, error)

// withRetry runs the mutator inside RunInTransaction up to maxAttempts
// times, sleeping between attempts. Constraint violations abort the
// transaction on the database side, so they are rejected outright instead
// of being retried.
func (e *Engine) withRetry(ctx context.Context, kind EventKind, mutate mutator) (Outcome, error) {
	var (
		acquired bool
		lastErr  error
	)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		var out Outcome
		err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
			var mErr error
			out, mErr = mutate(ctx, tx)
			return mErr
		})
		if err == nil {
			return out, nil
		}

		if isConstraintViolation(err) {
			e.logger.Warn("hrsync: event rejected by database constraint",
				"event", kind, "error", err)
			return OutcomeRejected, nil
		}

		if errors.Is(err, store.ErrUnavailable) {
			e.logger.Warn("hrsync: could not open transaction",
				"event", kind, "attempt", attempt, "error", err)
		} else {
			acquired = true
			lastErr = err
			e.logger.Warn("hrsync: event apply failed",
				"event", kind, "attempt", attempt, "error", err)
		}

		if attempt < e.maxAttempts {
			select {
			case <-ctx.Done():
				return OutcomeInvalid, ctx.Err()
			case <-time.After(e.backoff):
			}
		}
	}

	if !acquired {
		return OutcomeInvalid, fmt.Errorf("apply %s: %w", kind, ErrStoreUnreachable)
	}
	return OutcomeInvalid, fmt.Errorf("apply %s after %d attempts: %w", kind, e.maxAttempts, lastErr)
}

// isConstraintViolation reports whether err is a Postgres unique or foreign
// key violation. Retrying those replays the same statement against the same
// data and can never succeed.
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" || pqErr.Code == "23503"
}
