// Package queue implements the bounded, thread-safe FIFO that sits between
// producer threads calling addMessage and the writer's background worker.
//
// The shape follows the teacher's channel-based batcher (see
// batcher/message_batcher.go) in spirit -- a single background consumer
// draining a producer-fed buffer -- but a plain channel can't express
// requeue-at-head or a discard policy applied at enqueue time, so here the
// queue is a mutex + condition variable guarding a plain slice, per the
// explicit contract in the specification's concurrency model.
package queue

import (
	"sort"
	"sync"
	"time"

	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/message"
)

// DiscardAction is applied when an enqueue would push the queue over its
// discard threshold.
type DiscardAction int

const (
	// DiscardOldest drops the head of the queue to make room.
	DiscardOldest DiscardAction = iota
	// DiscardNewest drops the incoming message instead of enqueueing it.
	DiscardNewest
	// DiscardNone never drops; the queue is allowed to grow unbounded.
	DiscardNone
)

// Config configures oversize-message handling, which is applied at enqueue
// time because only the queue sees every message before it is batched.
type Config struct {
	// MaxMessageBytes is the per-service cap on a single message's payload.
	// Zero means no cap is enforced.
	MaxMessageBytes int
	// TruncateOversizeMessages, when true, truncates an oversize message to
	// MaxMessageBytes instead of dropping it.
	TruncateOversizeMessages bool
}

// Queue is the ordered sequence of pending LogMessages for one writer.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	items []message.LogMessage

	threshold int
	action    DiscardAction
	cfg       Config

	stopped bool

	log *logger.Logger
}

// New creates a Queue with the given initial discard threshold and action.
func New(threshold int, action DiscardAction, cfg Config, log *logger.Logger) *Queue {
	q := &Queue{
		threshold: threshold,
		action:    action,
		cfg:       cfg,
		log:       log,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// SetDiscardThreshold changes the capacity at which discards begin. Safe to
// call concurrently with Enqueue/DequeueBatch.
func (q *Queue) SetDiscardThreshold(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.threshold = n
}

// SetDiscardAction changes the discard policy.
func (q *Queue) SetDiscardAction(a DiscardAction) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.action = a
}

// Size returns the current number of queued messages.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueue appends msg to the tail of the queue, applying oversize handling
// and then the discard policy. It never blocks.
func (q *Queue) Enqueue(msg message.LogMessage) {
	if len(msg.Payload) == 0 {
		if q.log != nil {
			q.log.Warn("empty-message-dropped")
		}
		return
	}

	if q.cfg.MaxMessageBytes > 0 && msg.Size() > q.cfg.MaxMessageBytes {
		if !q.cfg.TruncateOversizeMessages {
			if q.log != nil {
				q.log.WarnD("oversize-message-dropped", logger.M{
					"size": msg.Size(), "max": q.cfg.MaxMessageBytes,
				})
			}
			return
		}
		msg = msg.Truncate(q.cfg.MaxMessageBytes)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, msg)
	q.applyDiscardLocked()
	q.cond.Broadcast()
}

// applyDiscardLocked enforces the discard threshold. Caller holds q.mu.
func (q *Queue) applyDiscardLocked() {
	if q.threshold <= 0 && q.action == DiscardNone {
		return
	}
	if q.action == DiscardNone {
		return
	}
	for len(q.items) > q.threshold {
		switch q.action {
		case DiscardOldest:
			q.items = q.items[1:]
		case DiscardNewest:
			q.items = q.items[:len(q.items)-1]
		}
	}
}

// RequeueHead restores a previously-dequeued batch to the front of the
// queue, in its original order, bypassing both the discard threshold and
// the discard policy: these messages were already accepted once.
func (q *Queue) RequeueHead(batch []message.LogMessage) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	merged := make([]message.LogMessage, 0, len(batch)+len(q.items))
	merged = append(merged, batch...)
	merged = append(merged, q.items...)
	q.items = merged
	q.cond.Broadcast()
}

// Stop wakes any blocked DequeueBatch call so the worker can observe the
// stop signal and begin its drain sequence.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.cond.Broadcast()
}

// Stopped reports whether Stop has been called.
func (q *Queue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// DequeueBatch waits up to maxWait for at least one message to arrive, then
// greedily pulls additional messages while the running count stays below
// maxCount and the running byte total (including overheadPerMsg for each
// message) stays at or below maxBytes. Messages are removed from the queue
// in FIFO order. Returns an empty slice if maxWait elapses with nothing
// queued, or if Stop was called and the queue is empty.
func (q *Queue) DequeueBatch(maxWait time.Duration, maxCount int, maxBytes int, overheadPerMsg int) []message.LogMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 && !q.stopped {
		q.waitLocked(maxWait)
	}

	if len(q.items) == 0 {
		return nil
	}

	batch := make([]message.LogMessage, 0, minInt(len(q.items), maxCount))
	totalBytes := 0
	taken := 0
	for taken < len(q.items) && len(batch) < maxCount {
		msg := q.items[taken]
		size := msg.Size() + overheadPerMsg
		if len(batch) > 0 && totalBytes+size > maxBytes {
			break
		}
		batch = append(batch, msg)
		totalBytes += size
		taken++
	}

	q.items = q.items[taken:]
	return batch
}

// waitLocked blocks on the condition variable for up to maxWait, waking
// early if a message is enqueued or Stop is called. Caller holds q.mu.
func (q *Queue) waitLocked(maxWait time.Duration) {
	if maxWait <= 0 {
		return
	}

	deadline := time.Now().Add(maxWait)
	done := make(chan struct{})
	timer := time.AfterFunc(maxWait, func() {
		q.mu.Lock()
		close(done)
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	for len(q.items) == 0 && !q.stopped {
		select {
		case <-done:
			return
		default:
		}
		if time.Now().After(deadline) {
			return
		}
		q.cond.Wait()
	}
}

// SortByTimestamp orders a batch ascending by timestamp, preserving the
// original (enqueue) order for equal timestamps. The log-group destination
// requires non-decreasing timestamps within a batch; the others benefit.
func SortByTimestamp(batch []message.LogMessage) {
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
