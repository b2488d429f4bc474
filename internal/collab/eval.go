package collab

import (
	"context"
	"fmt"
)

// EvalRunner implements Evaluator for the base-model evaluation script.
type EvalRunner struct {
	GPUs            int
	DeviceBatchSize int
	RunTag          string
}

// BuildArgs constructs the torchrun argument list for base evaluation.
func (r *EvalRunner) BuildArgs() []string {
	return []string{
		"--standalone",
		fmt.Sprintf("--nproc_per_node=%d", r.GPUs),
		"-m", "scripts.base_eval",
		"--",
		fmt.Sprintf("--model_tag=%s", r.RunTag),
		fmt.Sprintf("--device_batch_size=%d", r.DeviceBatchSize),
	}
}

// Evaluate runs base-model evaluation against the latest checkpoint.
func (r *EvalRunner) Evaluate(ctx context.Context) error {
	return runCommand(ctx, "base_eval", "torchrun", r.BuildArgs()...)
}

// SFTRunner implements FineTuner for the chat supervised fine-tuning script.
type SFTRunner struct {
	GPUs            int
	DeviceBatchSize int
	RunTag          string
}

// BuildArgs constructs the torchrun argument list for fine-tuning.
func (r *SFTRunner) BuildArgs() []string {
	return []string{
		"--standalone",
		fmt.Sprintf("--nproc_per_node=%d", r.GPUs),
		"-m", "scripts.chat_sft",
		"--",
		fmt.Sprintf("--model_tag=%s", r.RunTag),
		fmt.Sprintf("--device_batch_size=%d", r.DeviceBatchSize),
	}
}

// FineTune runs supervised fine-tuning on top of the base model.
func (r *SFTRunner) FineTune(ctx context.Context) error {
	return runCommand(ctx, "chat_sft", "torchrun", r.BuildArgs()...)
}

// ChatEvalRunner implements Evaluator for the post-fine-tune chat evaluation.
type ChatEvalRunner struct {
	GPUs            int
	DeviceBatchSize int
	RunTag          string
}

// BuildArgs constructs the torchrun argument list for chat evaluation.
func (r *ChatEvalRunner) BuildArgs() []string {
	return []string{
		"--standalone",
		fmt.Sprintf("--nproc_per_node=%d", r.GPUs),
		"-m", "scripts.chat_eval",
		"--",
		"-i", "sft",
		fmt.Sprintf("--model_tag=%s", r.RunTag),
		fmt.Sprintf("--device_batch_size=%d", r.DeviceBatchSize),
	}
}

// Evaluate runs chat evaluation against the fine-tuned model.
func (r *ChatEvalRunner) Evaluate(ctx context.Context) error {
	return runCommand(ctx, "chat_eval", "torchrun", r.BuildArgs()...)
}
