package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork wraps every failure to reach a remote backend. Callers test for
// it with errors.Is to tell an unreachable Redis from a bad key or payload.
var ErrNetwork = errors.New("cache backend unreachable")

// Connection setup tolerates a Redis that is still starting (for example a
// sidecar container): up to connectAttempts pings, doubling the wait after
// each failure.
const connectAttempts = 3

var connectBaseDelay = time.Second

// transientError marks a ping failure that is worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient marks err as retryable by [pingWithRetry]. nil stays nil.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// pingWithRetry calls ping until it succeeds, returns a non-transient error,
// runs out of attempts, or ctx ends. The last ping error is returned.
func pingWithRetry(ctx context.Context, ping func() error) error {
	delay := connectBaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(); err == nil || !isTransient(err) || attempt == connectAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
