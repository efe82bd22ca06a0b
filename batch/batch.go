// Package batch packs pending messages into service-compliant batches,
// enforcing the bit-exact per-destination size and count caps and the
// pre-send timestamp sort the log-group destination requires.
//
// Grounded on the teacher's batcher/message_batcher.go (count/size-bounded
// accumulation before a flush) and on the byte-accounting loop in the
// rosa-log-router delivery example's deliverEventsInBatches, generalized
// here to pull from a queue.Queue instead of a channel so dequeue and
// discard share one bounded data structure per the specification.
package batch

import (
	"time"

	"github.com/Clever/log-writers-go/message"
	"github.com/Clever/log-writers-go/queue"
)

// Caps are the literal, bit-exact per-destination batching limits.
type Caps struct {
	MaxCount           int
	MaxBytes           int
	OverheadPerMessage int
	MaxMessageBytes    int
}

// LogGroupCaps are CloudWatch Logs' PutLogEvents limits.
var LogGroupCaps = Caps{
	MaxCount:           10000,
	MaxBytes:           1048576,
	OverheadPerMessage: 26,
	MaxMessageBytes:    262144 - 26,
}

// StreamCaps are a partitioned stream's PutRecords limits.
var StreamCaps = Caps{
	MaxCount:           500,
	MaxBytes:           5242880,
	OverheadPerMessage: 0,
	MaxMessageBytes:    1048576,
}

// TopicCaps describes the (degenerate, unbatched) topic destination: one
// message per "batch".
var TopicCaps = Caps{
	MaxCount:           1,
	MaxBytes:           262144,
	OverheadPerMessage: 0,
	MaxMessageBytes:    262144,
}

// Builder pulls a batch from a queue respecting Caps and returns it sorted
// by ascending timestamp (stable, so enqueue order breaks ties).
type Builder struct {
	Caps Caps
}

// NewBuilder constructs a Builder for the given caps.
func NewBuilder(caps Caps) Builder {
	return Builder{Caps: caps}
}

// Build waits up to maxWait for work, then packs as large a batch as the
// caps allow.
func (b Builder) Build(q *queue.Queue, maxWait time.Duration) []message.LogMessage {
	batch := q.DequeueBatch(maxWait, b.Caps.MaxCount, b.Caps.MaxBytes, b.Caps.OverheadPerMessage)
	if len(batch) == 0 {
		return batch
	}
	queue.SortByTimestamp(batch)
	return batch
}
