package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/modelsmith/speedrun/internal/checkpoint"
	"github.com/modelsmith/speedrun/internal/logging"
)

// minSyncInterval is the floor on the continuous-loop cadence; shorter
// intervals just hammer the hub without moving more data.
var minSyncInterval = 30 * time.Second

// Agent applies the session's backup policy on top of a Transport.
type Agent struct {
	Transport Transport
	Req       Request

	// CheckpointDir is the active run tag's checkpoint directory, consulted
	// for the skip-if-local restore policy.
	CheckpointDir string

	// RestoreEnabled gates the restore-on-start pass.
	RestoreEnabled bool
}

// Configured reports whether a remote repository is set. Every Agent
// operation is a no-op when it is not.
func (a *Agent) Configured() bool {
	return a.Req.RepoID != ""
}

// RestoreIfNeeded pulls the remote snapshot unless local checkpoint
// artifacts for the active run tag already exist: a stale remote snapshot
// must never clobber progress this host has already made. The skip decision
// is made here, before the transport is ever invoked.
//
// Errors are returned to the caller; a requested restore that cannot run is
// a misconfiguration to surface at session start, not something to limp past.
func (a *Agent) RestoreIfNeeded(ctx context.Context) (restored bool, err error) {
	if !a.Configured() || !a.RestoreEnabled {
		logging.Info("Restore disabled or no remote repo configured, skipping")
		return false, nil
	}

	if step, found := checkpoint.LatestStep(a.CheckpointDir); found {
		logging.Infof("Local checkpoints exist (latest step %d), skipping restore", step)
		return false, nil
	}

	logging.Infof("Restoring %s:%s -> %s", a.Req.RepoType, a.Req.RepoID, a.Req.LocalDir)
	if err := a.Transport.Restore(ctx, a.Req); err != nil {
		return false, fmt.Errorf("restore from %s: %w", a.Req.RepoID, err)
	}
	return true, nil
}

// SyncOnce pushes the local state root to the remote repository in a single
// pass.
func (a *Agent) SyncOnce(ctx context.Context) error {
	if !a.Configured() {
		return nil
	}
	if err := a.Transport.Sync(ctx, a.Req); err != nil {
		return fmt.Errorf("sync to %s: %w", a.Req.RepoID, err)
	}
	return nil
}

// SyncLoop pushes on a fixed interval until ctx is cancelled. Each pass is
// independent: a failed pass is logged and the loop continues at the next
// tick. Cancellation is observed between passes, never mid-upload: a pass
// runs detached from ctx so a half-uploaded tree is never left behind, and
// the supervisor's bounded stop wait covers a pass still in flight at
// shutdown.
func (a *Agent) SyncLoop(ctx context.Context, interval time.Duration) {
	if !a.Configured() {
		return
	}
	if interval < minSyncInterval {
		interval = minSyncInterval
	}

	for {
		if ctx.Err() != nil {
			return
		}

		if err := a.SyncOnce(context.Background()); err != nil {
			logging.Warnf("Sync pass failed: %v", err)
		} else {
			logging.Debugf("Sync pass complete (%s -> %s)", a.Req.LocalDir, a.Req.RepoID)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
