package logging_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelsmith/speedrun/internal/logging"
)

func init() {
	// Disable color output in tests so assertions match plain text.
	color.NoColor = true
}

// captureStdout captures stdout output produced by fn.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0s"},
		{45, "45s"},
		{90, "1m 30s"},
		{3661, "1h 1m 1s"},
		{7200, "2h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, logging.FormatDuration(tt.seconds))
		})
	}
}

func TestInfoPrefix(t *testing.T) {
	out := captureStdout(t, func() {
		logging.Info("checkpoint found")
	})
	assert.Equal(t, "[INFO] checkpoint found\n", out)
}

func TestStageHeader(t *testing.T) {
	out := captureStdout(t, func() {
		logging.Stage("Training")
	})
	assert.Contains(t, out, "[STAGE] Training")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestDebugSuppressedByDefault(t *testing.T) {
	logging.SetVerbose(false)
	out := captureStdout(t, func() {
		logging.Debug("hidden")
	})
	assert.Empty(t, out)
}

func TestInfofFormats(t *testing.T) {
	out := captureStdout(t, func() {
		logging.Infof("Continuing dataset download in background (%d shards total)", 240)
	})
	assert.Equal(t, "[INFO] Continuing dataset download in background (240 shards total)\n", out)
}

func TestStagefFormats(t *testing.T) {
	out := captureStdout(t, func() {
		logging.Stagef("Training (resuming from step %d)", 4250)
	})
	assert.Contains(t, out, "[STAGE] Training (resuming from step 4250)")
}

func TestDebugfSuppressedByDefault(t *testing.T) {
	logging.SetVerbose(false)
	out := captureStdout(t, func() {
		logging.Debugf("pass %d", 3)
	})
	assert.Empty(t, out)
}

func TestResumeDecision(t *testing.T) {
	out := captureStdout(t, func() {
		logging.ResumeDecision(4250, true)
	})
	assert.Equal(t, "[INFO] Checkpoint found at step 4250, training will resume\n", out)

	out = captureStdout(t, func() {
		logging.ResumeDecision(0, false)
	})
	assert.Equal(t, "[INFO] No checkpoints found, starting a fresh run\n", out)
}

func TestDebugVerbose(t *testing.T) {
	logging.SetVerbose(true)
	defer logging.SetVerbose(false)

	out := captureStdout(t, func() {
		logging.Debug("visible")
	})
	assert.Equal(t, "[DEBUG] visible\n", out)
}
