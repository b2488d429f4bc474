// Package supervisor owns the lifetime of the background backup sync task.
//
// It guarantees one invariant: if a continuous-loop sync was started, it is
// stopped and followed by exactly one final one-shot sync before the process
// exits, on every termination path.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/modelsmith/speedrun/internal/logging"
)

// DefaultStopTimeout bounds how long OnTerminate waits for the background
// loop to acknowledge cancellation.
const DefaultStopTimeout = 30 * time.Second

// SyncAgent is the slice of the backup agent the supervisor needs.
type SyncAgent interface {
	Configured() bool
	SyncOnce(ctx context.Context) error
	SyncLoop(ctx context.Context, interval time.Duration)
}

// Supervisor wraps the whole session run: the sequencer starts the
// background sync through it, and main routes every exit path through
// OnTerminate.
type Supervisor struct {
	Agent       SyncAgent
	Interval    time.Duration
	StopTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	cleanup sync.Once
}

// New creates a supervisor over the given agent.
func New(agent SyncAgent, interval time.Duration) *Supervisor {
	return &Supervisor{
		Agent:       agent,
		Interval:    interval,
		StopTimeout: DefaultStopTimeout,
	}
}

// StartBackgroundSync launches the continuous-loop sync as a goroutine and
// records its handle. No-op when no remote repository is configured, or when
// a loop is already running.
func (s *Supervisor) StartBackgroundSync(ctx context.Context) {
	if s.Agent == nil || !s.Agent.Configured() {
		logging.Debug("No remote repo configured, background sync not started")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	logging.Infof("Background sync started (every %s)", s.Interval)
	go func(done chan struct{}) {
		defer close(done)
		s.Agent.SyncLoop(loopCtx, s.Interval)
	}(s.done)
}

// OnTerminate stops the background loop, runs the final one-shot sync, and
// returns the original exit code. Cleanup runs at most once no matter how
// many termination paths race into it; every caller gets its own code back,
// and no cleanup-phase failure ever replaces it.
func (s *Supervisor) OnTerminate(code int) int {
	s.cleanup.Do(func() {
		s.stopLoop()
		s.finalSync()
	})
	return code
}

// stopLoop requests cooperative cancellation and waits, bounded, for the
// loop to stop. An unresponsive loop (mid-upload on a stalled connection)
// must not wedge process exit.
func (s *Supervisor) stopLoop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	timeout := s.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	select {
	case <-done:
		logging.Debug("Background sync stopped")
	case <-time.After(timeout):
		logging.Warn("Background sync did not stop in time, proceeding with final sync")
	}
}

// finalSync pushes local state one last time. Best-effort: the session's
// exit code reflects the training outcome, not backup health.
func (s *Supervisor) finalSync() {
	if s.Agent == nil || !s.Agent.Configured() {
		return
	}

	logging.Info("Running final backup sync")
	if err := s.Agent.SyncOnce(context.Background()); err != nil {
		logging.Warnf("Final sync failed: %v", err)
		return
	}
	logging.Success("Final backup sync complete")
}
