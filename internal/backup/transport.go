// Package backup mirrors the local state root to a remote Hugging Face-style
// repository, and restores it on a fresh host. The actual transfer is
// delegated to an external transport collaborator; this package owns the
// policy: when to restore, when to skip, and how the continuous sync loop
// behaves.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// DefaultAllowPatterns selects the artifact trees worth mirroring. Everything
// else under the local root (raw dataset shards in particular) is cheaper to
// re-download than to round-trip through the backup repo.
var DefaultAllowPatterns = []string{
	"base_checkpoints/**",
	"chatsft_checkpoints/**",
	"tokenizer/**",
	"report/**",
	"report.md",
}

// DefaultIgnorePatterns excludes in-flight files from sync passes.
var DefaultIgnorePatterns = []string{
	"**/*.tmp",
	"**/*.lock",
}

// Request addresses one transfer between the local state root and the remote
// repository.
type Request struct {
	RepoID         string
	RepoType       string // model, dataset, or space
	Private        bool
	LocalDir       string
	AllowPatterns  []string
	IgnorePatterns []string
}

// Transport moves the state tree between local disk and the remote store.
// Both directions are idempotent and safe to repeat.
type Transport interface {
	Restore(ctx context.Context, req Request) error
	Sync(ctx context.Context, req Request) error
}

// CLITransport implements Transport by shelling out to the Python transfer
// scripts that wrap the hub API.
type CLITransport struct {
	Python    string // interpreter, defaults to "python"
	ScriptDir string // directory holding the transfer scripts, defaults to "ops"
}

func (t *CLITransport) python() string {
	if t.Python != "" {
		return t.Python
	}
	return "python"
}

func (t *CLITransport) scriptDir() string {
	if t.ScriptDir != "" {
		return t.ScriptDir
	}
	return "ops"
}

// BuildRestoreArgs constructs the restore collaborator's argument list.
func (t *CLITransport) BuildRestoreArgs(req Request) []string {
	args := []string{
		t.scriptDir() + "/hf_restore.py",
		"--repo-id", req.RepoID,
		"--repo-type", req.RepoType,
		"--local-dir", req.LocalDir,
	}
	for _, p := range req.AllowPatterns {
		args = append(args, "--allow-pattern", p)
	}
	return args
}

// BuildSyncArgs constructs the one-shot sync collaborator's argument list.
func (t *CLITransport) BuildSyncArgs(req Request) []string {
	args := []string{
		t.scriptDir() + "/hf_sync.py",
		"--once",
		"--repo-id", req.RepoID,
		"--repo-type", req.RepoType,
		"--private", fmt.Sprintf("%t", req.Private),
		"--local-dir", req.LocalDir,
	}
	for _, p := range req.AllowPatterns {
		args = append(args, "--allow-pattern", p)
	}
	for _, p := range req.IgnorePatterns {
		args = append(args, "--ignore-pattern", p)
	}
	return args
}

// Restore pulls the remote snapshot into the local state root.
func (t *CLITransport) Restore(ctx context.Context, req Request) error {
	return t.run(ctx, t.BuildRestoreArgs(req))
}

// Sync pushes the local state root to the remote repository.
func (t *CLITransport) Sync(ctx context.Context, req Request) error {
	return t.run(ctx, t.BuildSyncArgs(req))
}

func (t *CLITransport) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.python(), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("transport exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("run transport: %w", err)
	}
	return nil
}
