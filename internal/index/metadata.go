// Package index owns the run-state file and the exclusive lock that
// serialize indexing passes: one writer per project, and enough metadata
// to tell a fresh index from a stale one.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// RunStateVersion is the current format version; older files are
	// treated as absent rather than migrated.
	RunStateVersion = 1

	runStateFile = "run-state.json"
)

// RunState is the small on-disk record of the last indexing pass.
type RunState struct {
	Version       int       `json:"version"`
	RunID         string    `json:"runId"`
	CreatedAt     time.Time `json:"createdAt"`
	FilesWalked   int       `json:"filesWalked"`
	FilesIndexed  int       `json:"filesIndexed"`
	Duration      string    `json:"duration"`
	EngineVersion string    `json:"engineVersion"`
}

// NewRunState stamps a fresh record for a completed pass.
func NewRunState(engineVersion string, filesWalked, filesIndexed int, took time.Duration) *RunState {
	return &RunState{
		Version:       RunStateVersion,
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		FilesWalked:   filesWalked,
		FilesIndexed:  filesIndexed,
		Duration:      took.Round(time.Millisecond).String(),
		EngineVersion: engineVersion,
	}
}

// LoadRunState reads the run-state file from stateDir. A missing or
// version-mismatched file returns (nil, nil): "never indexed".
func LoadRunState(stateDir string) (*RunState, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, runStateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run state: %w", err)
	}

	var rs RunState
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse run state: %w", err)
	}
	if rs.Version != RunStateVersion {
		return nil, nil
	}
	return &rs, nil
}

// Save writes the run state to stateDir.
func (rs *RunState) Save(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	rs.Version = RunStateVersion
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	return os.WriteFile(filepath.Join(stateDir, runStateFile), data, 0644)
}

// Age returns how long ago the pass completed.
func (rs *RunState) Age() time.Duration {
	return time.Since(rs.CreatedAt)
}

// Stale reports whether the index is older than maxAge. A nil receiver
// (never indexed) is always stale.
func (rs *RunState) Stale(maxAge time.Duration) bool {
	if rs == nil {
		return true
	}
	return rs.Age() > maxAge
}
