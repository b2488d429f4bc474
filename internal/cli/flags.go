// Package cli provides flag binding and validation for the speedrun CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelsmith/speedrun/internal/config"
)

// BindFlags registers all CLI flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
// Call ValidateFlags after parsing to check flag combinations.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Run Identity
	flags.StringVar(&cfg.RunTag, "run-tag", "", "Checkpoint directory tag (default: d<depth>)")
	flags.StringVar(&cfg.RunName, "run-name", "", "Experiment-tracking run name (default: run tag)")
	flags.StringVar(&cfg.LocalRoot, "local-root", "/data/nanorun", "Local state root for checkpoints and datasets")

	// Remote Backup
	flags.StringVar(&cfg.RepoID, "repo-id", "", "Hugging Face repo for checkpoint backup (empty disables sync)")
	flags.StringVar(&cfg.RepoType, "repo-type", "model", "Remote repo type: model, dataset, or space")
	flags.BoolVar(&cfg.Private, "private", true, "Create the remote repo as private")
	flags.IntVar(&cfg.SyncInterval, "sync-interval", 1200, "Seconds between background sync passes")

	// Negation flag needs Changed detection
	var noRestore bool
	flags.BoolVar(&noRestore, "no-restore", false, "Skip restoring checkpoints from the remote repo")

	// Training Shape
	flags.IntVar(&cfg.NumGPUs, "gpus", 8, "GPUs per node passed to torchrun")
	flags.IntVar(&cfg.ModelDepth, "depth", 20, "Transformer depth of the model to train")
	flags.IntVar(&cfg.DeviceBatchSize, "device-batch-size", 32, "Per-device micro batch size")
	flags.IntVar(&cfg.SaveEvery, "save-every", 1000, "Checkpoint save interval in steps")

	// Dataset
	flags.IntVar(&cfg.DatasetBootstrapShards, "bootstrap-shards", 8, "Shards downloaded before tokenizer training")
	flags.IntVar(&cfg.DatasetTotalShards, "total-shards", 240, "Total shards downloaded before training starts")

	// Stage Toggles
	var noEval, noSFT, noChatEval bool
	flags.BoolVar(&noEval, "no-eval", false, "Skip base model evaluation")
	flags.BoolVar(&noSFT, "no-sft", false, "Skip supervised fine-tuning")
	flags.BoolVar(&noChatEval, "no-chat-eval", false, "Skip fine-tuned model evaluation")

	// Notifications
	flags.StringVar(&cfg.NotifyWebhook, "notify-webhook", "", "Webhook URL for session lifecycle notifications")

	// Misc
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file (KEY=VALUE or YAML)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")

	// Session Management
	flags.BoolVar(&cfg.Status, "status", false, "Show session status and exit")
	flags.BoolVar(&cfg.Clean, "clean", false, "Delete state directory and start fresh")
}

// ValidateFlags checks for invalid flag combinations after parsing.
// Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	// --config must exist if provided
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	// Handle negation flags via Changed detection
	if cmd.Flags().Changed("no-restore") {
		cfg.RestoreEnabled = false
	}
	if cmd.Flags().Changed("no-eval") {
		cfg.EvalEnabled = false
	}
	if cmd.Flags().Changed("no-sft") {
		cfg.SFTEnabled = false
	}
	if cmd.Flags().Changed("no-chat-eval") {
		cfg.ChatEvalEnabled = false
	}

	// --status and --clean are mutually exclusive: one inspects state, the
	// other destroys it.
	if cfg.Status && cfg.Clean {
		return fmt.Errorf("--status and --clean are mutually exclusive")
	}

	return cfg.Validate()
}
