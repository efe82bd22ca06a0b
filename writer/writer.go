// Package writer implements the shared worker skeleton every destination
// writer (log-group, partitioned-stream, topic) is built from: initialize,
// drain the queue, build a batch, send it, handle the outcome, and shut
// down gracefully.
//
// Grounded on the teacher's writer/firehose_writer.go and
// firehose/firehose_kinesis.go, which are themselves two independent
// writer implementations sharing the same Initialize/ProcessMessage/
// SendBatch/Shutdown shape. The specification's design notes ask for that
// shared shape to be factored explicitly as composition rather than
// inheritance: Skeleton takes an injected facade-shaped SendFunc/InitFunc/
// RecreateFunc instead of three classes extending a common abstract base.
package writer

import (
	"context"
	"sync"
	"time"

	"gopkg.in/Clever/kayvee-go.v6/logger"

	"github.com/Clever/log-writers-go/batch"
	"github.com/Clever/log-writers-go/facade"
	"github.com/Clever/log-writers-go/message"
	"github.com/Clever/log-writers-go/queue"
	"github.com/Clever/log-writers-go/retry"
	"github.com/Clever/log-writers-go/stats"
)

// State is the writer's lifecycle phase.
type State int32

const (
	StateNew State = iota
	StateInitializing
	StateRunning
	StateStopping
	StateStopped
	StateInitFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateInitializing:
		return "INITIALIZING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	case StateInitFailed:
		return "INIT_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Config is the set of options every destination writer recognizes. Only
// BatchDelay, DiscardThreshold, and DiscardAction may be mutated after
// construction.
type Config struct {
	BatchDelay               time.Duration
	DiscardThreshold         int
	DiscardAction            queue.DiscardAction
	TruncateOversizeMessages bool
	Synchronous              bool
	InitializationTimeout    time.Duration
	EnableBatchLogging       bool
}

// Hint carries information the writer's retry loop passes back into a
// destination's SendFunc between attempts -- currently just whether a
// cached sequence token must be refreshed before this attempt.
type Hint struct {
	RefreshToken bool
}

// Result is what a destination's SendFunc reports back about one attempt.
type Result struct {
	// FailedIndices lists, within the batch passed to SendFunc, the
	// messages that must be requeued even though the call itself
	// succeeded (Kinesis per-record partial failure). Nil/empty with a
	// nil Err means the whole batch was accepted.
	FailedIndices []int
	// Err is nil on (full or partial) success. A non-nil Err is expected
	// to be a *facade.Error; anything else is treated as
	// facade.UnexpectedException.
	Err error
}

// InitFunc performs one-time destination setup (find-or-create group/
// stream/topic, wait for active). It must return before
// Config.InitializationTimeout elapses or be fatal.
type InitFunc func(ctx context.Context) error

// SendFunc sends one batch and reports the outcome.
type SendFunc func(ctx context.Context, batch []message.LogMessage, hint Hint) Result

// RecreateFunc re-runs a destination's create path after the facade
// reports the group/stream went missing mid-flight. Nil for destinations
// that don't support recreation (the topic writer).
type RecreateFunc func(ctx context.Context) error

// Skeleton is the shared worker loop. Each destination package builds one
// via New, supplying its own InitFunc/SendFunc/RecreateFunc/Caps.
type Skeleton struct {
	name string
	cfg  Config
	caps batch.Caps

	queue   *queue.Queue
	builder batch.Builder
	stats   *stats.Statistics
	log     *logger.Logger

	sleeper         retry.Sleeper
	throttleBackoff retry.Backoff
	raceBackoff     retry.Backoff

	initFn     InitFunc
	sendFn     SendFunc
	recreateFn RecreateFunc
	shutdownFn func() error

	mu        sync.Mutex
	state     State
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
	started   bool
}

// New constructs a Skeleton. Callers typically don't call this directly --
// see writer.NewLogGroupWriter / NewStreamWriter / NewTopicWriter.
func New(name string, cfg Config, caps batch.Caps, initFn InitFunc, sendFn SendFunc, recreateFn RecreateFunc, shutdownFn func() error, log *logger.Logger) *Skeleton {
	if cfg.Synchronous {
		cfg.BatchDelay = 0
	}

	q := queue.New(cfg.DiscardThreshold, cfg.DiscardAction, queue.Config{
		MaxMessageBytes:          caps.MaxMessageBytes,
		TruncateOversizeMessages: cfg.TruncateOversizeMessages,
	}, log)

	return &Skeleton{
		name:            name,
		cfg:             cfg,
		caps:            caps,
		queue:           q,
		builder:         batch.NewBuilder(caps),
		stats:           stats.New(),
		log:             log,
		sleeper:         retry.RealSleeper,
		throttleBackoff: retry.Exponential{Initial: 250 * time.Millisecond, Max: 4 * time.Second},
		raceBackoff:     retry.Exponential{Initial: 250 * time.Millisecond, Max: 4 * time.Second},
		initFn:          initFn,
		sendFn:          sendFn,
		recreateFn:      recreateFn,
		shutdownFn:      shutdownFn,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
	}
}

// Statistics exposes the writer's counters for observability.
func (s *Skeleton) Statistics() *stats.Statistics { return s.stats }

// QueueSize returns the number of messages currently queued, awaiting a
// batch.
func (s *Skeleton) QueueSize() int { return s.queue.Size() }

// SetSleeper overrides the sleeper used between retry attempts. Tests use
// this to run backoff loops instantly.
func (s *Skeleton) SetSleeper(sl retry.Sleeper) { s.sleeper = sl }

// State returns the writer's current lifecycle phase.
func (s *Skeleton) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Skeleton) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// IsRunning reports whether the writer is accepting and processing work.
func (s *Skeleton) IsRunning() bool {
	return s.State() == StateRunning
}

// SetBatchDelay changes the max queue wait per batch.
func (s *Skeleton) SetBatchDelay(d time.Duration) {
	s.mu.Lock()
	s.cfg.BatchDelay = d
	s.mu.Unlock()
}

func (s *Skeleton) batchDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.BatchDelay
}

// SetDiscardThreshold changes the queue's discard threshold live.
func (s *Skeleton) SetDiscardThreshold(n int) { s.queue.SetDiscardThreshold(n) }

// SetDiscardAction changes the queue's discard policy live.
func (s *Skeleton) SetDiscardAction(a queue.DiscardAction) { s.queue.SetDiscardAction(a) }

// AddMessage enqueues msg. In synchronous mode it also drives one
// iteration of the process loop inline, on the caller's goroutine.
func (s *Skeleton) AddMessage(msg message.LogMessage) {
	s.queue.Enqueue(msg)
	if s.cfg.Synchronous {
		s.drainOnce(context.Background())
	}
}

// Start runs initialization and, unless synchronous, launches the
// background worker. It returns once initialization has finished (either
// into RUNNING or INIT_FAILED); the worker loop itself continues on its
// own goroutine.
func (s *Skeleton) Start(ctx context.Context) {
	s.setState(StateInitializing)

	initCtx := ctx
	var cancel context.CancelFunc
	if s.cfg.InitializationTimeout > 0 {
		initCtx, cancel = context.WithTimeout(ctx, s.cfg.InitializationTimeout)
		defer cancel()
	}

	if err := s.initFn(initCtx); err != nil {
		s.stats.SetLastError(err)
		s.queue.SetDiscardThreshold(0)
		s.setState(StateInitFailed)
		if s.log != nil {
			s.log.ErrorD("writer-init-failed", logger.M{"writer": s.name, "error": err.Error()})
		}
		close(s.stoppedCh)
		return
	}

	s.setState(StateRunning)
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	if !s.cfg.Synchronous {
		go s.loop()
	}
}

// loop is the background worker: dequeue, build, send, repeat, until
// stopped and drained.
func (s *Skeleton) loop() {
	for {
		stopRequested := s.stopRequested()
		b := s.builder.Build(s.queue, s.batchDelay())
		if len(b) == 0 {
			if stopRequested {
				s.finalizeStop()
				close(s.stoppedCh)
				return
			}
			continue
		}
		s.handleBatch(context.Background(), b)
	}
}

// drainOnce runs exactly one build-and-send cycle; used by synchronous
// mode, where there is no background loop.
func (s *Skeleton) drainOnce(ctx context.Context) {
	b := s.builder.Build(s.queue, 0)
	if len(b) == 0 {
		return
	}
	s.handleBatch(ctx, b)
}

func (s *Skeleton) stopRequested() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// handleBatch drives one batch through send, backoff-retry, and the
// per-reason-code outcome handling from the specification's error
// taxonomy. batch stays fixed across throttling/race retries; only
// per-record partial failures ever change what's requeued.
func (s *Skeleton) handleBatch(ctx context.Context, msgs []message.LogMessage) {
	if s.cfg.EnableBatchLogging && s.log != nil {
		s.log.InfoD("sending-batch", logger.M{"writer": s.name, "size": len(msgs)})
	}

	throttleAttempts := 0
	raceAttempts := 0
	hint := Hint{}

	for {
		res := s.sendFn(ctx, msgs, hint)
		hint = Hint{}

		if res.Err == nil {
			requeued := indicesToMessages(msgs, res.FailedIndices)
			sent := len(msgs) - len(requeued)
			s.stats.RecordBatchSent(sent, len(requeued), len(msgs))
			if len(requeued) > 0 {
				s.queue.RequeueHead(requeued)
			}
			if s.cfg.EnableBatchLogging && s.log != nil {
				s.log.InfoD("sent-batch", logger.M{"writer": s.name, "sent": sent, "requeued": len(requeued)})
			}
			return
		}

		ferr := facade.AsFacadeError(res.Err)
		switch ferr.Code {
		case facade.Throttling, facade.Aborted:
			throttleAttempts++
			s.stats.IncrThrottledWrites(1)
			if throttleAttempts < 4 {
				s.sleeper.Sleep(s.throttleBackoff.Delay(throttleAttempts - 1))
				continue
			}
			s.queue.RequeueHead(msgs)
			s.stats.SetLastError(res.Err)
			if s.log != nil {
				s.log.WarnD("batch-requeued-throttled", logger.M{"writer": s.name, "size": len(msgs)})
			}
			return

		case facade.InvalidSequenceToken:
			raceAttempts++
			s.stats.IncrWriterRaceRetries(1)
			if raceAttempts < 4 {
				hint = Hint{RefreshToken: true}
				s.sleeper.Sleep(s.raceBackoff.Delay(raceAttempts - 1))
				continue
			}
			s.queue.RequeueHead(msgs)
			s.stats.IncrUnrecoveredWriterRaceRetries(1)
			s.stats.SetLastError(res.Err)
			if s.log != nil {
				s.log.WarnD("batch-failed-unrecovered-sequence-token-race", logger.M{"writer": s.name, "size": len(msgs)})
			}
			return

		case facade.AlreadyProcessed:
			s.stats.RecordBatchSent(len(msgs), 0, len(msgs))
			if s.log != nil {
				s.log.WarnD("batch-already-processed", logger.M{"writer": s.name, "size": len(msgs)})
			}
			return

		case facade.MissingLogGroup, facade.MissingLogStream:
			if s.recreateFn != nil {
				if rerr := s.recreateFn(ctx); rerr != nil && s.log != nil {
					s.log.ErrorD("recreate-destination-failed", logger.M{"writer": s.name, "error": rerr.Error()})
				}
			}
			s.queue.RequeueHead(msgs)
			s.stats.SetLastError(res.Err)
			if s.log != nil {
				s.log.ErrorD("batch-requeued-missing-destination", logger.M{"writer": s.name, "reason": ferr.Code.String()})
			}
			return

		default:
			s.queue.RequeueHead(msgs)
			s.stats.SetLastError(res.Err)
			if s.log != nil {
				s.log.ErrorD("batch-requeued-unexpected-error", logger.M{"writer": s.name, "error": res.Err.Error()})
			}
			return
		}
	}
}

func indicesToMessages(batch []message.LogMessage, indices []int) []message.LogMessage {
	if len(indices) == 0 {
		return nil
	}
	out := make([]message.LogMessage, 0, len(indices))
	for _, i := range indices {
		out = append(out, batch[i])
	}
	return out
}

// Stop signals the worker to finish its current iteration, drain the
// queue, call the facade's Shutdown, and transition to STOPPED. It is
// idempotent and returns immediately; use WaitUntilStopped to block.
func (s *Skeleton) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.queue.Stop()

		s.mu.Lock()
		started := s.started
		synchronous := s.cfg.Synchronous
		s.mu.Unlock()

		if !started {
			// Never started (e.g. init failed before Start completed) or
			// still mid-Start: stoppedCh is already closed by Start's
			// failure path, or will be by the loop goroutine once it
			// launches. Either way there is nothing more to drive here.
			return
		}

		s.setState(StateStopping)

		if synchronous {
			// No background loop is running; drain and finalize inline.
			for {
				b := s.builder.Build(s.queue, 0)
				if len(b) == 0 {
					break
				}
				s.handleBatch(context.Background(), b)
			}
			s.finalizeStop()
			close(s.stoppedCh)
		}
		// Non-synchronous: the loop goroutine observes stopRequested(),
		// drains on its own, and closes stoppedCh via finalizeStop.
	})
}

// finalizeStop calls the facade's Shutdown and marks the writer STOPPED.
// Called by the loop goroutine (async mode) or by Stop itself (sync mode).
func (s *Skeleton) finalizeStop() {
	if s.shutdownFn != nil {
		if err := s.shutdownFn(); err != nil && s.log != nil {
			s.log.ErrorD("facade-shutdown-error", logger.M{"writer": s.name, "error": err.Error()})
		}
	}
	s.setState(StateStopped)
}

// WaitUntilStopped blocks until the writer reaches STOPPED (or STOPPED via
// INIT_FAILED), or timeout elapses. Returns true if the writer stopped in
// time.
func (s *Skeleton) WaitUntilStopped(timeout time.Duration) bool {
	select {
	case <-s.stoppedCh:
		return true
	case <-time.After(timeout):
		return false
	}
}
