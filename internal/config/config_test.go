package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modelsmith/speedrun/internal/config"
)

func TestEffectiveRunTagDerivedFromDepth(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.Equal(t, "d20", cfg.EffectiveRunTag())

	cfg.ModelDepth = 26
	assert.Equal(t, "d26", cfg.EffectiveRunTag())
}

func TestEffectiveRunTagExplicitWins(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.RunTag = "d20-lr-sweep"
	assert.Equal(t, "d20-lr-sweep", cfg.EffectiveRunTag())
}

func TestEffectiveRunNameDefaultsToTag(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.Equal(t, "d20", cfg.EffectiveRunName())

	cfg.RunName = "speedrun-aug"
	assert.Equal(t, "speedrun-aug", cfg.EffectiveRunName())
}

func TestRemoteConfigured(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.False(t, cfg.RemoteConfigured())

	cfg.RepoID = "alice/nanorun-ckpts"
	assert.True(t, cfg.RemoteConfigured())
}

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, config.NewDefaultConfig().Validate())
}

func TestValidateRejectsBadRepoType(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.RepoType = "bucket"
	assert.ErrorContains(t, cfg.Validate(), "HF_REPO_TYPE")
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SyncInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "SYNC_INTERVAL")
}

func TestValidateRejectsBootstrapAboveTotal(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.DatasetBootstrapShards = 500
	assert.ErrorContains(t, cfg.Validate(), "DATASET_BOOTSTRAP_SHARDS")
}

func TestValidateRejectsZeroGPUs(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.NumGPUs = 0
	assert.ErrorContains(t, cfg.Validate(), "NUM_GPUS")
}
