package skill

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// backendAttempts bounds executor retries for transient backend failures.
const backendAttempts = 3

// BackendError marks a transient store/provider failure inside an executor.
// The controller surfaces it as a user-visible failure while preserving
// carry state, so the user can retry the same turn.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failure during %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// withRetry runs op with bounded exponential backoff. The operation must be
// safe to repeat: executors order their steps so a retried prefix is
// idempotent (index cleanup before record deletion).
func withRetry(ctx context.Context, op string, fn func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), backendAttempts-1),
		ctx,
	)

	if err := backoff.Retry(fn, policy); err != nil {
		return &BackendError{Op: op, Err: err}
	}
	return nil
}
