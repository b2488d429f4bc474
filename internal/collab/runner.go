// Package collab launches the external collaborators the orchestrator
// composes: training, tokenizer, dataset, evaluation, fine-tuning, and
// report programs. Each collaborator is an opaque subprocess with an
// exit-code contract; the orchestrator never parses their output.
package collab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Trainer runs the base-training collaborator, optionally resuming from a
// checkpoint step. A negative resumeStep means a fresh run.
type Trainer interface {
	Train(ctx context.Context, resumeStep int) error
}

// TokenizerTrainer runs the tokenizer bootstrap collaborators.
type TokenizerTrainer interface {
	TrainTokenizer(ctx context.Context) error
	EvalTokenizer(ctx context.Context) error
}

// DatasetDownloader fetches pretraining shards up to a target count.
// Idempotent: re-invoking with a larger target continues a partial download.
type DatasetDownloader interface {
	Download(ctx context.Context, shards int) error
}

// Evaluator runs an evaluation collaborator.
type Evaluator interface {
	Evaluate(ctx context.Context) error
}

// FineTuner runs the supervised fine-tuning collaborator.
type FineTuner interface {
	FineTune(ctx context.Context) error
}

// Reporter manages the session report collaborator.
type Reporter interface {
	Reset(ctx context.Context) error
	Generate(ctx context.Context) error
}

// StageError reports a collaborator subprocess that exited non-zero.
// The code it carries becomes the session's exit code.
type StageError struct {
	Stage string
	Code  int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Stage, e.Code)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExitCode maps a stage error to the session exit code: 0 for nil, the
// collaborator's own code for a StageError, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Code
	}
	return 1
}

// CommandChecker is a function type that checks tool availability.
// It takes a list of tool names and returns a map of tool name to availability.
type CommandChecker func(tools ...string) map[string]bool

// CheckAvailability checks if the given tools are available in PATH.
// Returns a map of tool name to availability status.
func CheckAvailability(tools ...string) map[string]bool {
	result := make(map[string]bool, len(tools))
	for _, tool := range tools {
		_, err := exec.LookPath(tool)
		result[tool] = err == nil
	}
	return result
}

// runCommand executes an external collaborator, streaming its output to the
// parent's stdio. Non-zero exits come back as a *StageError named after the
// stage.
func runCommand(ctx context.Context, stage string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &StageError{Stage: stage, Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}
