// Package banner provides colored banner display functions for the speedrun CLI.
//
// Banners mark the session boundaries an operator scans for: start (fresh or
// resumed), completion, failure, and interruption.
package banner

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/modelsmith/speedrun/internal/exitcode"
	"github.com/modelsmith/speedrun/internal/logging"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// PrintStartupBanner displays the startup banner with session info.
// resumeStep < 0 reports a fresh run so the operator can tell the two apart
// before training begins.
func PrintStartupBanner(sessionID, runTag, repoID string, gpus int, resumeStep int) {
	sep := headerColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(headerColor("  speedrun - Resumable Training Session"))
	fmt.Println(sep)
	fmt.Printf("  Session:    %s\n", sessionID)
	fmt.Printf("  Run tag:    %s\n", runTag)
	if repoID != "" {
		fmt.Printf("  Backup:     %s\n", repoID)
	} else {
		fmt.Printf("  Backup:     (none)\n")
	}
	fmt.Printf("  GPUs:       %d\n", gpus)
	if resumeStep >= 0 {
		fmt.Printf("  Resume:     step %d\n", resumeStep)
	} else {
		fmt.Printf("  Resume:     fresh run\n")
	}
	fmt.Println(sep)
}

// PrintCompletionBanner displays the completion banner with the session
// duration.
func PrintCompletionBanner(runTag string, durationSecs int) {
	sep := successColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(successColor("  ✓ All stages completed successfully!"))
	fmt.Printf("  Run tag:    %s\n", runTag)
	fmt.Printf("  Duration:   %s (%ds)\n", logging.FormatDuration(durationSecs), durationSecs)
	fmt.Println(sep)
}

// PrintFailureBanner displays the failure banner for a stage that exited
// non-zero.
func PrintFailureBanner(stage string, code int) {
	sep := errorColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(errorColor("  ✗ SESSION FAILED"))
	fmt.Println(sep)
	fmt.Printf("  Stage:      %s\n", stage)
	fmt.Printf("  Exit code:  %d (%s)\n", code, exitcode.Name(code))
	fmt.Println(sep)
}

// PrintInterruptedBanner displays when the session is stopped by a signal.
func PrintInterruptedBanner(stage string) {
	sep := warnColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(warnColor("  ⚠ Session interrupted"))
	fmt.Printf("  Stage:      %s\n", stage)
	fmt.Println("  Checkpoints are preserved; re-run to resume.")
	fmt.Println(sep)
}

// PrintStatusBanner shows the persisted session record for --status.
func PrintStatusBanner(sessionID, runTag, lifecycle, startedAt, lastUpdated string, resumeStep int) {
	sep := headerColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(headerColor("  speedrun session status"))
	fmt.Println(sep)
	fmt.Printf("  Session:    %s\n", sessionID)
	fmt.Printf("  Run tag:    %s\n", runTag)
	fmt.Printf("  Lifecycle:  %s\n", lifecycle)
	if resumeStep >= 0 {
		fmt.Printf("  Resumed:    step %d\n", resumeStep)
	} else {
		fmt.Printf("  Resumed:    fresh run\n")
	}
	fmt.Printf("  Started:    %s\n", startedAt)
	fmt.Printf("  Updated:    %s\n", lastUpdated)
	fmt.Println(sep)
}
