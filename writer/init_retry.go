package writer

import (
	"context"
	"time"

	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/retry"
)

// Bit-exact per the specification's §6 contracts: create paths get ~12
// attempts at 5s (60s total), describe/find paths get ~300 attempts at
// 100ms (30s total).
const (
	createMaxAttempts    = 12
	createBackoffDelay   = 5 * time.Second
	describeMaxAttempts  = 300
	describeBackoffDelay = 100 * time.Millisecond
)

var (
	createRetryMgr   = retry.New(retry.Linear{Interval: createBackoffDelay})
	describeRetryMgr = retry.New(retry.Linear{Interval: describeBackoffDelay})
)

// retryThrottled drives op through mgr's bounded attempts, retrying only
// while op fails with a Throttling/Aborted facade.Error. Any other error
// (including a non-facade error) propagates immediately. If every attempt
// is throttled, the last observed throttling error is returned. ctx bounds
// the loop too -- initFn/recreateFn are required to return before
// Config.InitializationTimeout elapses, and the 12x5s/300x100ms attempt
// budgets alone can run well past that, so each attempt checks ctx first.
func retryThrottled(ctx context.Context, mgr *retry.Manager, maxAttempts int, op func() error) error {
	var lastErr error
	_, ok, err := mgr.AttemptsContext(ctx, func() (interface{}, bool, error) {
		opErr := op()
		if opErr == nil {
			return nil, true, nil
		}
		ferr := facade.AsFacadeError(opErr)
		if ferr.Code == facade.Throttling || ferr.Code == facade.Aborted {
			lastErr = opErr
			return nil, false, nil
		}
		return nil, false, opErr
	}, maxAttempts)
	if err != nil {
		return err
	}
	if !ok {
		return lastErr
	}
	return nil
}

// retryCreate wraps a create-path call (CreateLogGroup, CreateLogStream,
// CreateStream, CreateTopic) with the create-path's throttling retry
// budget.
func retryCreate(ctx context.Context, op func() error) error {
	return retryThrottled(ctx, createRetryMgr, createMaxAttempts, op)
}

// retryDescribe wraps a describe/find-path call (FindLogGroup,
// FindLogStream, RetrieveStreamStatus, FindTopicByName) with the
// describe-path's throttling retry budget.
func retryDescribe(ctx context.Context, op func() error) error {
	return retryThrottled(ctx, describeRetryMgr, describeMaxAttempts, op)
}
