package collab

import "context"

// ReportRunner implements Reporter via the report script. Reset clears
// accumulated metrics before a fresh run; Generate assembles the final
// session report under the local state root.
type ReportRunner struct{}

// Reset clears accumulated report state.
func (r *ReportRunner) Reset(ctx context.Context) error {
	return runCommand(ctx, "report_reset", "python", "-m", "nanorun.report", "reset")
}

// Generate writes the session report.
func (r *ReportRunner) Generate(ctx context.Context) error {
	return runCommand(ctx, "report_generate", "python", "-m", "nanorun.report", "generate")
}
