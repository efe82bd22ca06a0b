// Package stats accumulates the writer's observability counters and
// periodically reports them to the internal log, mirroring the teacher's
// sender/stats/stats.go minute-tick aggregation (there: dropped-message
// counts by app/level; here: each writer's delivery counters).
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/Clever/kayvee-go.v6/logger"
)

// Snapshot is a point-in-time, race-free copy of a Statistics instance.
type Snapshot struct {
	MessagesSent                 int64
	MessagesSentLastBatch        int64
	MessagesRequeuedLastBatch    int64
	LastBatchSize                int64
	ThrottledWrites              int64
	WriterRaceRetries            int64
	UnrecoveredWriterRaceRetries int64
	LastError                    error
	LastErrorAt                  time.Time
}

// Statistics are the writer's counters. All fields are mutated only by the
// writer's worker goroutine. The counters are atomics so observers can read
// them concurrently without a lock; the last error is guarded by errMu.
type Statistics struct {
	messagesSent                 int64
	messagesSentLastBatch        int64
	messagesRequeuedLastBatch    int64
	lastBatchSize                int64
	throttledWrites              int64
	writerRaceRetries            int64
	unrecoveredWriterRaceRetries int64

	errMu     sync.Mutex
	lastError error
	lastErrAt time.Time
}

// New returns a zeroed Statistics.
func New() *Statistics { return &Statistics{} }

// RecordBatchSent updates the per-batch and cumulative sent counters.
func (s *Statistics) RecordBatchSent(sentCount, requeuedCount, batchSize int) {
	atomic.AddInt64(&s.messagesSent, int64(sentCount))
	atomic.StoreInt64(&s.messagesSentLastBatch, int64(sentCount))
	atomic.StoreInt64(&s.messagesRequeuedLastBatch, int64(requeuedCount))
	atomic.StoreInt64(&s.lastBatchSize, int64(batchSize))
}

// IncrThrottledWrites bumps the throttled-write counter by delta.
func (s *Statistics) IncrThrottledWrites(delta int64) {
	atomic.AddInt64(&s.throttledWrites, delta)
}

// IncrWriterRaceRetries bumps the sequence-token race retry counter.
func (s *Statistics) IncrWriterRaceRetries(delta int64) {
	atomic.AddInt64(&s.writerRaceRetries, delta)
}

// IncrUnrecoveredWriterRaceRetries bumps the unrecovered race counter.
func (s *Statistics) IncrUnrecoveredWriterRaceRetries(delta int64) {
	atomic.AddInt64(&s.unrecoveredWriterRaceRetries, delta)
}

// SetLastError records the most recent error observed by the writer.
func (s *Statistics) SetLastError(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.lastError = err
	s.lastErrAt = time.Now()
}

// Snapshot copies out every counter and the last error under a consistent
// (if not perfectly atomic across fields) view.
func (s *Statistics) Snapshot() Snapshot {
	s.errMu.Lock()
	lastErr, lastErrAt := s.lastError, s.lastErrAt
	s.errMu.Unlock()

	return Snapshot{
		MessagesSent:                 atomic.LoadInt64(&s.messagesSent),
		MessagesSentLastBatch:        atomic.LoadInt64(&s.messagesSentLastBatch),
		MessagesRequeuedLastBatch:    atomic.LoadInt64(&s.messagesRequeuedLastBatch),
		LastBatchSize:                atomic.LoadInt64(&s.lastBatchSize),
		ThrottledWrites:              atomic.LoadInt64(&s.throttledWrites),
		WriterRaceRetries:            atomic.LoadInt64(&s.writerRaceRetries),
		UnrecoveredWriterRaceRetries: atomic.LoadInt64(&s.unrecoveredWriterRaceRetries),
		LastError:                    lastErr,
		LastErrorAt:                  lastErrAt,
	}
}

// Reporter periodically logs a Statistics snapshot, the way the teacher's
// sender/stats package ticks once a minute to summarize dropped messages.
type Reporter struct {
	name     string
	stats    *Statistics
	interval time.Duration
	log      *logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReporter builds a Reporter for the named writer.
func NewReporter(name string, s *Statistics, interval time.Duration, log *logger.Logger) *Reporter {
	return &Reporter{
		name:     name,
		stats:    s,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the periodic reporting goroutine.
func (r *Reporter) Start() {
	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.report()
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop ends the reporting goroutine and waits for it to exit.
func (r *Reporter) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *Reporter) report() {
	if r.log == nil {
		return
	}
	snap := r.stats.Snapshot()
	fields := logger.M{
		"writer":                          r.name,
		"messages_sent":                   snap.MessagesSent,
		"messages_sent_last_batch":        snap.MessagesSentLastBatch,
		"messages_requeued_last_batch":    snap.MessagesRequeuedLastBatch,
		"last_batch_size":                 snap.LastBatchSize,
		"throttled_writes":                snap.ThrottledWrites,
		"writer_race_retries":             snap.WriterRaceRetries,
		"unrecovered_writer_race_retries": snap.UnrecoveredWriterRaceRetries,
	}
	if snap.LastError != nil {
		fields["last_error"] = snap.LastError.Error()
		fields["last_error_at"] = snap.LastErrorAt
	}
	r.log.InfoD("writer-stats", fields)
}
