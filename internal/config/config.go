// Package config defines the speedrun configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < config file < process environment < CLI flag
// overrides. Every variable name doubles as an environment variable, so a
// launch script can configure a whole session without flags.
package config

import "fmt"

// WhitelistedVars lists every configuration variable name that may appear in
// config files or the environment. Variables not in this list are silently
// ignored during loading.
var WhitelistedVars = [19]string{
	"RUN_TAG",
	"RUN_NAME",
	"LOCAL_ROOT",
	"SYNC_INTERVAL",
	"RESTORE_ENABLED",
	"HF_REPO_ID",
	"HF_REPO_TYPE",
	"HF_PRIVATE",
	"NUM_GPUS",
	"MODEL_DEPTH",
	"DEVICE_BATCH_SIZE",
	"SAVE_EVERY",
	"DATASET_BOOTSTRAP_SHARDS",
	"DATASET_TOTAL_SHARDS",
	"EVAL_ENABLED",
	"SFT_ENABLED",
	"CHAT_EVAL_ENABLED",
	"NOTIFY_WEBHOOK",
	"VERBOSE",
}

// Config holds every configuration field for the speedrun CLI.
type Config struct {
	// Run identity. RunTag namespaces checkpoint directories; RunName is the
	// experiment-tracking name passed to the trainer. An empty RunTag is
	// derived from the model depth (d<depth>).
	RunTag  string
	RunName string

	// Local state root shared by all collaborators.
	LocalRoot string

	// Remote backup settings.
	RepoID         string
	RepoType       string
	Private        bool
	SyncInterval   int
	RestoreEnabled bool

	// Training shape.
	NumGPUs         int
	ModelDepth      int
	DeviceBatchSize int
	SaveEvery       int

	// Dataset shard targets. Bootstrap shards are downloaded before tokenizer
	// training; the remainder up to the total is fetched concurrently.
	DatasetBootstrapShards int
	DatasetTotalShards     int

	// Optional stage toggles.
	EvalEnabled     bool
	SFTEnabled      bool
	ChatEvalEnabled bool

	// Notifications.
	NotifyWebhook string

	// Runtime flags.
	Verbose bool

	// CLI-only flags (not loaded from config files or environment).
	ConfigFile string
	Status     bool
	Clean      bool
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		LocalRoot:              "/data/nanorun",
		RepoType:               "model",
		Private:                true,
		SyncInterval:           1200,
		RestoreEnabled:         true,
		NumGPUs:                8,
		ModelDepth:             20,
		DeviceBatchSize:        32,
		SaveEvery:              1000,
		DatasetBootstrapShards: 8,
		DatasetTotalShards:     240,
		EvalEnabled:            true,
		SFTEnabled:             true,
		ChatEvalEnabled:        true,
	}
}

// EffectiveRunTag returns the explicit run tag, or one derived from the model
// depth when none was configured. The tag is fixed for the life of a session.
func (c *Config) EffectiveRunTag() string {
	if c.RunTag != "" {
		return c.RunTag
	}
	return fmt.Sprintf("d%d", c.ModelDepth)
}

// EffectiveRunName returns the experiment-tracking run name, defaulting to
// the run tag.
func (c *Config) EffectiveRunName() string {
	if c.RunName != "" {
		return c.RunName
	}
	return c.EffectiveRunTag()
}

// RemoteConfigured reports whether a remote backup repository is set.
// Restore and sync are both skipped entirely when it is not.
func (c *Config) RemoteConfigured() bool {
	return c.RepoID != ""
}

// Validate checks cross-field constraints after all sources are merged.
func (c *Config) Validate() error {
	switch c.RepoType {
	case "model", "dataset", "space":
	default:
		return fmt.Errorf("invalid HF_REPO_TYPE %q: must be model, dataset, or space", c.RepoType)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %d", c.SyncInterval)
	}
	if c.NumGPUs < 1 {
		return fmt.Errorf("NUM_GPUS must be at least 1, got %d", c.NumGPUs)
	}
	if c.DatasetBootstrapShards > c.DatasetTotalShards {
		return fmt.Errorf("DATASET_BOOTSTRAP_SHARDS (%d) exceeds DATASET_TOTAL_SHARDS (%d)",
			c.DatasetBootstrapShards, c.DatasetTotalShards)
	}
	return nil
}
