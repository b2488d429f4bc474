package notification

import "fmt"

// Event types for session-level notifications.
const (
	EventCompleted   = "completed"
	EventFailed      = "failed"
	EventInterrupted = "interrupted"
)

// FormatEvent creates a notification message for the given event.
func FormatEvent(event string, runTag string, sessionID string, exitCode int) string {
	switch event {
	case EventCompleted:
		return fmt.Sprintf("✅ speedrun %s [%s] completed all stages (exit %d)", runTag, sessionID, exitCode)
	case EventFailed:
		return fmt.Sprintf("❌ speedrun %s [%s] failed (exit %d). Checkpoints synced, re-run to resume", runTag, sessionID, exitCode)
	case EventInterrupted:
		return fmt.Sprintf("⏸️ speedrun %s [%s] interrupted (exit %d). Re-run to resume", runTag, sessionID, exitCode)
	default:
		return fmt.Sprintf("ℹ️ speedrun %s [%s] event: %s (exit %d)", runTag, sessionID, event, exitCode)
	}
}
