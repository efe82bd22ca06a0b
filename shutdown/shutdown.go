// Package shutdown coordinates graceful termination across one or more
// writers, optionally hooking process exit signals so a host process that
// forgets to call Stop explicitly still drains its queues.
//
// Grounded on the teacher's record_processor.Shutdown(reason), which
// branches on a TERMINATE/failover reason to decide whether to flush and
// checkpoint or bail out immediately -- generalized here to drive an
// arbitrary set of Stoppable writers instead of one hard-coded
// FirehoseWriter, and to expose that same TERMINATE-vs-abandon distinction
// as the WaitUntilStopped timeout: a positive timeout flushes like
// TERMINATE, and the caller gets back whether the drain finished in time.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gopkg.in/Clever/kayvee-go.v6/logger"
)

// Stoppable is the subset of writer.Skeleton's surface the coordinator
// drives: begin stopping, and report whether the drain finished.
type Stoppable interface {
	Stop()
	WaitUntilStopped(timeout time.Duration) bool
}

// Coordinator drives Stop/WaitUntilStopped across a fixed set of writers and
// optionally installs a signal handler to do the same on SIGINT/SIGTERM.
type Coordinator struct {
	writers []Stoppable
	log     *logger.Logger

	mu       sync.Mutex
	stopped  bool
	sigCh    chan os.Signal
	hookDone chan struct{}
}

// New builds a Coordinator over the given writers.
func New(log *logger.Logger, writers ...Stoppable) *Coordinator {
	return &Coordinator{writers: writers, log: log}
}

// InstallSignalHook registers a handler for SIGINT/SIGTERM that calls Stop
// and waits up to drainTimeout for every writer to finish draining before
// letting the process exit. Call RemoveSignalHook to unregister it (tests
// and embedders that manage their own lifecycle should do this).
func (c *Coordinator) InstallSignalHook(drainTimeout time.Duration) {
	c.mu.Lock()
	if c.sigCh != nil {
		c.mu.Unlock()
		return
	}
	c.sigCh = make(chan os.Signal, 1)
	c.hookDone = make(chan struct{})
	sigCh := c.sigCh
	hookDone := c.hookDone
	c.mu.Unlock()

	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer close(hookDone)
		sig, ok := <-sigCh
		if !ok {
			return
		}
		if c.log != nil {
			c.log.InfoD("shutdown-signal-received", logger.M{"signal": sig.String()})
		}
		c.Stop(drainTimeout)
		// Restore the default disposition and re-deliver the signal so the
		// process exits the way it would have without the hook.
		signal.Stop(sigCh)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(sig)
		}
	}()
}

// RemoveSignalHook unregisters the signal handler installed by
// InstallSignalHook. Safe to call even if no hook was installed.
func (c *Coordinator) RemoveSignalHook() {
	c.mu.Lock()
	sigCh := c.sigCh
	c.sigCh = nil
	c.mu.Unlock()
	if sigCh == nil {
		return
	}
	signal.Stop(sigCh)
	close(sigCh)
}

// Stop signals every writer to stop, waits up to timeout for each to finish
// draining, and returns true only if every writer stopped in time.
// Idempotent: a second call is a no-op that reports the first call's
// instantaneous "already stopped" state as successful.
func (c *Coordinator) Stop(timeout time.Duration) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return true
	}
	c.stopped = true
	c.mu.Unlock()

	for _, w := range c.writers {
		w.Stop()
	}

	deadline := time.Now().Add(timeout)
	allStopped := true
	for _, w := range c.writers {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		if !w.WaitUntilStopped(remaining) {
			allStopped = false
		}
	}

	if !allStopped && c.log != nil {
		c.log.WarnD("shutdown-timed-out", logger.M{"timeout_ms": timeout.Milliseconds()})
	}
	return allStopped
}
