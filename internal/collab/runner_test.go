package collab

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailability(t *testing.T) {
	t.Run("returns true for installed tool", func(t *testing.T) {
		result := CheckAvailability("ls")
		require.Contains(t, result, "ls")
		assert.True(t, result["ls"])
	})

	t.Run("returns false for missing tool", func(t *testing.T) {
		result := CheckAvailability("this-tool-definitely-does-not-exist-12345")
		assert.False(t, result["this-tool-definitely-does-not-exist-12345"])
	})

	t.Run("checks multiple tools at once", func(t *testing.T) {
		result := CheckAvailability("ls", "cat", "no-such-tool-xyz")
		assert.Len(t, result, 3)
		assert.True(t, result["ls"])
		assert.True(t, result["cat"])
		assert.False(t, result["no-such-tool-xyz"])
	})

	t.Run("empty input returns empty map", func(t *testing.T) {
		result := CheckAvailability()
		require.NotNil(t, result)
		assert.Empty(t, result)
	})
}

func TestStageErrorMessage(t *testing.T) {
	err := &StageError{Stage: "base_train", Code: 3}
	assert.Equal(t, "base_train exited with code 3", err.Error())
}

func TestStageErrorUnwrap(t *testing.T) {
	inner := errors.New("signal: killed")
	err := &StageError{Stage: "dataset", Code: 137, Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, 0},
		{"stage error carries its code", &StageError{Stage: "base_train", Code: 3}, 3},
		{"wrapped stage error", fmt.Errorf("training: %w", &StageError{Stage: "base_train", Code: 7}), 7},
		{"plain error maps to 1", errors.New("command not found"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRunCommandSuccess(t *testing.T) {
	err := runCommand(context.Background(), "noop", "true")
	assert.NoError(t, err)
}

func TestRunCommandNonZeroExit(t *testing.T) {
	err := runCommand(context.Background(), "noop", "false")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "noop", stageErr.Stage)
	assert.Equal(t, 1, stageErr.Code)
}

func TestRunCommandMissingBinary(t *testing.T) {
	err := runCommand(context.Background(), "noop", "no-such-binary-xyz")
	require.Error(t, err)

	var stageErr *StageError
	assert.False(t, errors.As(err, &stageErr))
	assert.Equal(t, 1, ExitCode(err))
}
