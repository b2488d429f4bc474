// Package signal provides signal handling for graceful shutdown of the
// speedrun CLI.
//
// A SIGINT or SIGTERM is a request to stop cleanly, not an error: the
// handler cancels the session context, the sequencer winds down at the next
// stage boundary, and the supervisor's cleanup performs the final backup
// sync. Repeated signals are absorbed; cleanup is re-entrancy guarded by the
// supervisor.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler registers SIGINT and SIGTERM handlers.
// When a signal is received, it calls the onInterrupt callback (if non-nil),
// then cancels the context.
//
// This function starts a goroutine that listens for signals. The goroutine
// terminates when either a signal is received or the context is canceled.
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			if onInterrupt != nil {
				onInterrupt()
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}()
}
