package httputil

import (
	"context"
	"errors"
	"time"
)

// Backoff is a retry schedule: up to Attempts calls, sleeping Delay after the
// first failure and twice as long after each one that follows.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is three attempts starting at one second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth another attempt. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsTransient reports whether err, or an error it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Do calls fn until it succeeds, returns an error not marked [Transient], or
// the attempts run out. The error returned is fn's last error with the
// transient mark removed, or ctx.Err() if ctx ends while waiting.
//
// A zero or negative Attempts means a single call.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var t transientError
		if !errors.As(err, &t) {
			return err
		}
		if attempt >= b.Attempts {
			return t.err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
