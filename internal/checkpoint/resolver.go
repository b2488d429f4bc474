// Package checkpoint inspects checkpoint directories written by the training
// collaborator and resolves the step to resume from.
//
// The orchestrator never writes checkpoint files; it only reads their names.
package checkpoint

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// DefaultCategory is the checkpoint category directory used by base training.
const DefaultCategory = "base_checkpoints"

// stepPattern matches checkpoint artifact names like model_000300.pt.
// Files that do not match are ignored, never an error.
var stepPattern = regexp.MustCompile(`^model_(\d+)\.pt$`)

// Dir returns the checkpoint directory for a run tag under the local state
// root: <root>/<category>/<tag>.
func Dir(root, category, tag string) string {
	return filepath.Join(root, category, tag)
}

// LatestStep returns the maximum step number among checkpoint artifacts in
// dir. A missing or empty directory, or one with no matching files, reports
// found=false rather than an error: an unreadable directory means there is
// nothing to resume from.
func LatestStep(dir string) (step int, found bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false
	}

	max := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := stepPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	if max < 0 {
		return 0, false
	}
	return max, true
}
