package collab

import (
	"context"
	"fmt"
)

// TrainerRunner implements Trainer by launching torchrun over the base
// training script.
type TrainerRunner struct {
	GPUs            int
	Depth           int
	DeviceBatchSize int
	SaveEvery       int
	RunTag          string
	RunName         string
}

// BuildArgs constructs the torchrun argument list. resumeStep < 0 omits the
// resume flag entirely; the trainer decides nothing about resume validity,
// it only receives the advisory step.
func (r *TrainerRunner) BuildArgs(resumeStep int) []string {
	args := []string{
		"--standalone",
		fmt.Sprintf("--nproc_per_node=%d", r.GPUs),
		"-m", "scripts.base_train",
		"--",
		fmt.Sprintf("--depth=%d", r.Depth),
		fmt.Sprintf("--device_batch_size=%d", r.DeviceBatchSize),
		fmt.Sprintf("--save_every=%d", r.SaveEvery),
		fmt.Sprintf("--model_tag=%s", r.RunTag),
		fmt.Sprintf("--run=%s", r.RunName),
	}
	if resumeStep >= 0 {
		args = append(args, fmt.Sprintf("--resume_from=%d", resumeStep))
	}
	return args
}

// Train executes the training collaborator.
func (r *TrainerRunner) Train(ctx context.Context, resumeStep int) error {
	return runCommand(ctx, "base_train", "torchrun", r.BuildArgs(resumeStep)...)
}
