// Package facade defines the narrow, uniform contract each destination's
// concrete SDK wrapper exposes to the writer, and the small reason-code
// taxonomy every facade normalizes its errors onto.
//
// Grounded on the teacher's typed-error convention: sender/firehose_sender.go
// returns kbc.CatastrophicSendBatchError and kbc.PartialSendBatchError,
// distinct error types the caller switches on rather than string-matching.
// Here that idea generalizes to a single Error type carrying a ReasonCode,
// since three different facades (CloudWatch, Kinesis, SNS) each surface a
// different concrete SDK exception type but must collapse onto the same
// small set of writer-visible decisions.
package facade

import "fmt"

// ReasonCode classifies why a facade operation failed, so the writer's
// decision logic can be identical across all three destinations.
type ReasonCode int

const (
	// UnexpectedException is any error the facade didn't specifically
	// recognize. Requeue, log, continue; never fatal.
	UnexpectedException ReasonCode = iota
	// Throttling means the service asked the caller to slow down.
	Throttling
	// Aborted is a transient service-side abort; treated like throttling.
	Aborted
	// InvalidSequenceToken means another publisher raced this one on a
	// log-group stream; the cached token is stale.
	InvalidSequenceToken
	// InvalidConfiguration is fatal to initialization (bad name, bad
	// retention period, and the like).
	InvalidConfiguration
	// MissingLogGroup means the destination's log group no longer exists.
	MissingLogGroup
	// MissingLogStream means the destination's log stream (or, by the same
	// semantics, a partitioned stream) no longer exists.
	MissingLogStream
	// AlreadyProcessed means a previous, apparently-failed attempt actually
	// succeeded; the messages are duplicates of an accepted batch.
	AlreadyProcessed
)

func (r ReasonCode) String() string {
	switch r {
	case Throttling:
		return "THROTTLING"
	case Aborted:
		return "ABORTED"
	case InvalidSequenceToken:
		return "INVALID_SEQUENCE_TOKEN"
	case InvalidConfiguration:
		return "INVALID_CONFIGURATION"
	case MissingLogGroup:
		return "MISSING_LOG_GROUP"
	case MissingLogStream:
		return "MISSING_LOG_STREAM"
	case AlreadyProcessed:
		return "ALREADY_PROCESSED"
	default:
		return "UNEXPECTED_EXCEPTION"
	}
}

// Error is the error type every facade operation returns on failure. The
// writer's decision logic type-asserts to *Error and branches on Code; any
// other error type is treated as UnexpectedException.
type Error struct {
	Code      ReasonCode
	Retryable bool
	Cause     error
}

// NewError wraps cause with a reason code and retryability.
func NewError(code ReasonCode, retryable bool, cause error) *Error {
	return &Error{Code: code, Retryable: retryable, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Cause)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsFacadeError extracts the *Error from an arbitrary error, treating any
// non-facade error as an unexpected, non-retryable failure.
func AsFacadeError(err error) *Error {
	if err == nil {
		return nil
	}
	if ferr, ok := err.(*Error); ok {
		return ferr
	}
	return &Error{Code: UnexpectedException, Retryable: false, Cause: err}
}
