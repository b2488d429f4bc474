// Package state persists the session record under the local state root so a
// replacement host (or an operator running --status) can see how far the
// previous session got.
package state

// SessionState represents the persisted state of a speedrun session.
// Written to <local-root>/.speedrun/session.json.
type SessionState struct {
	SchemaVersion int    `json:"schema_version"`
	SessionID     string `json:"session_id"`
	RunTag        string `json:"run_tag"`
	StartedAt     string `json:"started_at"`
	LastUpdated   string `json:"last_updated"`
	Lifecycle     string `json:"lifecycle"`

	// ResumeStep is the resume marker resolved at session start; -1 for a
	// fresh run.
	ResumeStep int `json:"resume_step"`

	// RepoID records the remote backup target, empty when backups are off.
	RepoID string `json:"repo_id"`

	// ExitCode of the last terminated session; meaningful only when
	// Lifecycle is terminated.
	ExitCode int `json:"exit_code"`
}

// Session lifecycle states. Transitions run strictly forward:
// initializing -> restoring -> running -> cleaning-up -> terminated,
// with restoring skipped when no remote restore applies.
const (
	LifecycleInitializing = "initializing"
	LifecycleRestoring    = "restoring"
	LifecycleRunning      = "running"
	LifecycleCleaningUp   = "cleaning-up"
	LifecycleTerminated   = "terminated"
)
