package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/modelsmith/speedrun/internal/backup"
	"github.com/modelsmith/speedrun/internal/checkpoint"
	"github.com/modelsmith/speedrun/internal/cli"
	"github.com/modelsmith/speedrun/internal/collab"
	"github.com/modelsmith/speedrun/internal/config"
	"github.com/modelsmith/speedrun/internal/logging"
	"github.com/modelsmith/speedrun/internal/session"
	sighandler "github.com/modelsmith/speedrun/internal/signal"
	"github.com/modelsmith/speedrun/internal/supervisor"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:     "speedrun",
		Short:   "Resumable LLM training session orchestrator",
		Long:    "Speedrun drives an end-to-end nanorun training session: restore, dataset, tokenizer, training, evaluation, with periodic checkpoint backup.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate flags after parsing
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				return err
			}
			return runSession(cmd, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Bind all CLI flags to the config
	cli.BindFlags(rootCmd, cfg)

	// Set custom help template
	cli.SetCustomHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildCLIOverrides creates a map of CLI flag overrides from the config.
// Uses cmd.Flags().Changed() to only include flags explicitly set by the user,
// ensuring config file values are not accidentally overridden by default values.
func buildCLIOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)

	// String flags: only include if explicitly set via CLI
	stringFlags := map[string]struct {
		key string
		val string
	}{
		"run-tag":        {"RUN_TAG", cfg.RunTag},
		"run-name":       {"RUN_NAME", cfg.RunName},
		"local-root":     {"LOCAL_ROOT", cfg.LocalRoot},
		"repo-id":        {"HF_REPO_ID", cfg.RepoID},
		"repo-type":      {"HF_REPO_TYPE", cfg.RepoType},
		"notify-webhook": {"NOTIFY_WEBHOOK", cfg.NotifyWebhook},
	}
	for flag, mapping := range stringFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	// Int flags
	intFlags := map[string]struct {
		key string
		val int
	}{
		"sync-interval":     {"SYNC_INTERVAL", cfg.SyncInterval},
		"gpus":              {"NUM_GPUS", cfg.NumGPUs},
		"depth":             {"MODEL_DEPTH", cfg.ModelDepth},
		"device-batch-size": {"DEVICE_BATCH_SIZE", cfg.DeviceBatchSize},
		"save-every":        {"SAVE_EVERY", cfg.SaveEvery},
		"bootstrap-shards":  {"DATASET_BOOTSTRAP_SHARDS", cfg.DatasetBootstrapShards},
		"total-shards":      {"DATASET_TOTAL_SHARDS", cfg.DatasetTotalShards},
	}
	for flag, mapping := range intFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = fmt.Sprintf("%d", mapping.val)
		}
	}

	// Bool flags
	boolFlags := map[string]struct {
		key string
		val bool
	}{
		"private": {"HF_PRIVATE", cfg.Private},
		"verbose": {"VERBOSE", cfg.Verbose},
	}
	for flag, mapping := range boolFlags {
		if cmd.Flags().Changed(flag) {
			if mapping.val {
				overrides[mapping.key] = "true"
			} else {
				overrides[mapping.key] = "false"
			}
		}
	}

	// Handle negation flags
	if cmd.Flags().Changed("no-restore") {
		overrides["RESTORE_ENABLED"] = "false"
	}
	if cmd.Flags().Changed("no-eval") {
		overrides["EVAL_ENABLED"] = "false"
	}
	if cmd.Flags().Changed("no-sft") {
		overrides["SFT_ENABLED"] = "false"
	}
	if cmd.Flags().Changed("no-chat-eval") {
		overrides["CHAT_EVAL_ENABLED"] = "false"
	}

	return overrides
}

func runSession(cmd *cobra.Command, cfg *config.Config) error {
	// Build CLI overrides map using Changed() for accurate detection
	cliOverrides := buildCLIOverrides(cmd, cfg)

	// Load config with full precedence chain: defaults < file < env < flags
	finalCfg, err := config.LoadWithPrecedence(cfg.ConfigFile, config.EnvOverrides(os.LookupEnv), cliOverrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Merge CLI-only flags (not in config files)
	finalCfg.ConfigFile = cfg.ConfigFile
	finalCfg.Status = cfg.Status
	finalCfg.Clean = cfg.Clean

	cfg = finalCfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Set verbose mode
	logging.SetVerbose(cfg.Verbose)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runTag := cfg.EffectiveRunTag()

	// Backup agent over the Python transfer scripts
	agent := &backup.Agent{
		Transport: &backup.CLITransport{},
		Req: backup.Request{
			RepoID:         cfg.RepoID,
			RepoType:       cfg.RepoType,
			Private:        cfg.Private,
			LocalDir:       cfg.LocalRoot,
			AllowPatterns:  backup.DefaultAllowPatterns,
			IgnorePatterns: backup.DefaultIgnorePatterns,
		},
		CheckpointDir:  checkpoint.Dir(cfg.LocalRoot, checkpoint.DefaultCategory, runTag),
		RestoreEnabled: cfg.RestoreEnabled,
	}

	sup := supervisor.New(agent, time.Duration(cfg.SyncInterval)*time.Second)

	seq := session.NewSequencer(cfg)
	seq.Trainer = &collab.TrainerRunner{
		GPUs:            cfg.NumGPUs,
		Depth:           cfg.ModelDepth,
		DeviceBatchSize: cfg.DeviceBatchSize,
		SaveEvery:       cfg.SaveEvery,
		RunTag:          runTag,
		RunName:         cfg.EffectiveRunName(),
	}
	seq.Tokenizer = &collab.TokenizerRunner{}
	seq.Dataset = &collab.DatasetRunner{}
	seq.BaseEval = &collab.EvalRunner{GPUs: cfg.NumGPUs, DeviceBatchSize: cfg.DeviceBatchSize, RunTag: runTag}
	seq.FineTuner = &collab.SFTRunner{GPUs: cfg.NumGPUs, DeviceBatchSize: cfg.DeviceBatchSize, RunTag: runTag}
	seq.ChatEval = &collab.ChatEvalRunner{GPUs: cfg.NumGPUs, DeviceBatchSize: cfg.DeviceBatchSize, RunTag: runTag}
	seq.Reporter = &collab.ReportRunner{}
	seq.Restorer = agent
	seq.Sync = sup

	// Setup signal handler so an interrupt cancels the running stage; the
	// supervisor's final sync still runs below.
	sighandler.SetupSignalHandler(ctx, cancel, func() {
		logging.Warn("Interrupted, stopping session and syncing checkpoints...")
	})

	code := seq.Run(ctx)
	if !cfg.Status {
		// Final sync runs on every session exit path, exactly once.
		code = sup.OnTerminate(code)
		seq.MarkTerminated(code)
	}
	os.Exit(code)
	return nil // unreachable
}
