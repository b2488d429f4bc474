package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelsmith/speedrun/internal/state"
)

func TestNewSessionDefaults(t *testing.T) {
	s := state.NewSession("d20", "alice/ckpts")

	assert.Equal(t, 1, s.SchemaVersion)
	assert.Contains(t, s.SessionID, "speedrun-")
	assert.Equal(t, "d20", s.RunTag)
	assert.Equal(t, state.LifecycleInitializing, s.Lifecycle)
	assert.Equal(t, -1, s.ResumeStep)
	assert.Equal(t, "alice/ckpts", s.RepoID)
	assert.NotEmpty(t, s.StartedAt)
}

func TestNewSessionUniqueIDs(t *testing.T) {
	a := state.NewSession("d20", "")
	b := state.NewSession("d20", "")
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), state.DirName)

	s := state.NewSession("d26", "alice/ckpts")
	s.Lifecycle = state.LifecycleRunning
	s.ResumeStep = 4250
	require.NoError(t, state.SaveState(s, dir))

	loaded, err := state.LoadState(dir)
	require.NoError(t, err)

	assert.Equal(t, s.SessionID, loaded.SessionID)
	assert.Equal(t, "d26", loaded.RunTag)
	assert.Equal(t, state.LifecycleRunning, loaded.Lifecycle)
	assert.Equal(t, 4250, loaded.ResumeStep)
}

func TestSaveStateCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", state.DirName)
	require.NoError(t, state.SaveState(state.NewSession("d20", ""), dir))

	_, err := os.Stat(filepath.Join(dir, "session.json"))
	assert.NoError(t, err)
}

func TestLoadStateMissing(t *testing.T) {
	_, err := state.LoadState(t.TempDir())
	assert.Error(t, err)
}

func TestInitStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), state.DirName)
	require.NoError(t, state.InitStateDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
