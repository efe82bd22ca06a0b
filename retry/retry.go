// Package retry implements the timed retry loop shared by facade polling
// (wait-for-active, wait-for-visible) and the writer's send retries.
//
// Grounded on the teacher's hand-rolled backoff loops -- the doubling delay
// in sender/firehose_sender.go's SendBatch, and the capped-exponential loop
// in the rosa-log-router delivery example (deliverEventsInBatches) -- but
// factored into a single reusable manager so every caller shares the same
// backoff math and the same injectable sleeper for flake-free tests.
package retry

import (
	"context"
	"time"
)

// Sleeper abstracts time.Sleep so tests can run backoff loops instantly.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealSleeper is the production Sleeper.
var RealSleeper Sleeper = realSleeper{}

// Backoff computes the delay before the Nth retry (attempt is 0-indexed:
// attempt 0 is the delay before the second overall try).
type Backoff interface {
	Delay(attempt int) time.Duration
}

// Linear waits a constant Interval between attempts.
type Linear struct {
	Interval time.Duration
}

// Delay implements Backoff.
func (l Linear) Delay(attempt int) time.Duration { return l.Interval }

// Exponential doubles the delay each attempt starting at Initial, capped at
// Max.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay implements Backoff.
func (e Exponential) Delay(attempt int) time.Duration {
	d := e.Initial
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= e.Max {
			return e.Max
		}
	}
	if d > e.Max {
		return e.Max
	}
	return d
}

// Op is a unit of retryable work. It returns (value, true) on success, or
// (zero, false) to request another attempt. If it returns a non-nil error
// the retry is abandoned and the error propagates immediately.
type Op func() (value interface{}, done bool, err error)

// Manager drives an Op through repeated attempts until it succeeds, errors,
// or a deadline elapses.
type Manager struct {
	Backoff Backoff
	Sleeper Sleeper
}

// New builds a Manager with the production sleeper.
func New(backoff Backoff) *Manager {
	return &Manager{Backoff: backoff, Sleeper: RealSleeper}
}

// Invoke runs op, retrying per m.Backoff until it reports done, errors, or
// timeout elapses. On timeout it returns the last value seen (typically
// the caller's zero value) and a nil error; callers interpret a timeout as
// "still not ready" rather than a hard failure.
func (m *Manager) Invoke(op Op, timeout time.Duration) (interface{}, error) {
	deadline := time.Now().Add(timeout)
	var last interface{}
	for attempt := 0; ; attempt++ {
		value, done, err := op()
		if err != nil {
			return nil, err
		}
		if done {
			return value, nil
		}
		last = value

		if !time.Now().Before(deadline) {
			return last, nil
		}

		delay := m.Backoff.Delay(attempt)
		if time.Now().Add(delay).After(deadline) {
			delay = time.Until(deadline)
			if delay < 0 {
				return last, nil
			}
		}
		m.Sleeper.Sleep(delay)
	}
}

// Attempts runs op up to maxAttempts times with m.Backoff between tries,
// ignoring wall-clock deadlines, for retries whose bound is a literal
// attempt count rather than a timeout. The writer's init-path throttling
// retries use the context-aware variant, AttemptsContext.
func (m *Manager) Attempts(op Op, maxAttempts int) (interface{}, bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		value, done, err := op()
		if err != nil {
			return nil, false, err
		}
		if done {
			return value, true, nil
		}
		if attempt < maxAttempts-1 {
			m.Sleeper.Sleep(m.Backoff.Delay(attempt))
		}
	}
	return nil, false, nil
}

// AttemptsContext behaves like Attempts but also stops -- returning ctx's
// error -- once ctx is done, so a caller's deadline (e.g. a writer's
// InitializationTimeout) bounds the loop even when maxAttempts alone
// would run well past it.
func (m *Manager) AttemptsContext(ctx context.Context, op Op, maxAttempts int) (interface{}, bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		value, done, err := op()
		if err != nil {
			return nil, false, err
		}
		if done {
			return value, true, nil
		}
		if attempt < maxAttempts-1 {
			m.Sleeper.Sleep(m.Backoff.Delay(attempt))
		}
	}
	return nil, false, nil
}
