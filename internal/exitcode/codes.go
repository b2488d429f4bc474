// Package exitcode defines named exit codes for the speedrun CLI.
//
// Stage collaborators (training, evaluation, tokenizer, dataset) propagate
// their own exit codes through the session unchanged; the constants here
// cover the codes the orchestrator itself produces.
package exitcode

// Exit code constants for orchestrator-originated terminations.
const (
	Success     = 0   // All enabled stages completed
	Error       = 1   // Misconfiguration, missing tools, restore failure
	Interrupted = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Codes propagated from a failing stage report as "StageFailure".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case Interrupted:
		return "Interrupted"
	default:
		return "StageFailure"
	}
}
