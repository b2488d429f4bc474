package collab

import (
	"context"
	"fmt"
)

// DatasetRunner implements DatasetDownloader via the dataset script.
// The script is idempotent: shards already on disk are skipped.
type DatasetRunner struct{}

// BuildArgs constructs arguments for a shard-count target.
func (r *DatasetRunner) BuildArgs(shards int) []string {
	return []string{"-m", "nanorun.dataset", "-n", fmt.Sprintf("%d", shards)}
}

// Download fetches shards until the target count is present locally.
func (r *DatasetRunner) Download(ctx context.Context, shards int) error {
	return runCommand(ctx, "dataset", "python", r.BuildArgs(shards)...)
}
