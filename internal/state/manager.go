package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DirName is the state directory created under the local state root.
const DirName = ".speedrun"

const stateFileName = "session.json"

// NewSession creates a fresh session record for the given run tag.
func NewSession(runTag, repoID string) *SessionState {
	now := time.Now().Format(time.RFC3339)
	return &SessionState{
		SchemaVersion: 1,
		SessionID:     fmt.Sprintf("speedrun-%s", uuid.New().String()[:8]),
		RunTag:        runTag,
		StartedAt:     now,
		LastUpdated:   now,
		Lifecycle:     LifecycleInitializing,
		ResumeStep:    -1,
		RepoID:        repoID,
	}
}

// SaveState persists the session state as indented JSON.
func SaveState(s *SessionState, dir string) error {
	s.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, stateFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// LoadState reads and parses the session state from the state directory.
func LoadState(dir string) (*SessionState, error) {
	path := filepath.Join(dir, stateFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var s SessionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	return &s, nil
}

// InitStateDir creates the state directory if it doesn't exist.
func InitStateDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
