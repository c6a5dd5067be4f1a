// Package statestore persists per-session TerrainState and per-terrain
// history to disk, and keeps an in-memory, lock-protected registry of
// active sessions for the daemon.
package statestore

import (
	"github.com/terrainium/terrainium/internal/terrain"
)

// CommandStatus mirrors spec.md §3's CommandState.status enum.
type CommandStatus string

const (
	StatusStarting  CommandStatus = "starting"
	StatusRunning   CommandStatus = "running"
	StatusFailed    CommandStatus = "failed"
	StatusSucceeded CommandStatus = "succeeded"
)

// CommandState is one command's run record within a batch.
type CommandState struct {
	Command  terrain.Command `json:"command"`
	LogPath  string          `json:"log_path"`
	Status   CommandStatus   `json:"status"`
	ExitCode *int            `json:"exit_code,omitempty"`
}

// TerrainState is the full persisted record for one session, written to
// <root>/<terrain_name>/<session_id>/state.json.
type TerrainState struct {
	SessionID      string                       `json:"session_id"`
	TerrainName    string                       `json:"terrain_name"`
	BiomeName      string                       `json:"biome_name"`
	TomlPath       string                       `json:"toml_path"`
	TerrainDir     string                       `json:"terrain_dir"`
	IsBackground   bool                         `json:"is_background"`
	StartTimestamp string                       `json:"start_timestamp"`
	EndTimestamp   string                       `json:"end_timestamp,omitempty"`
	Envs           map[string]string            `json:"envs"`
	Constructors   map[string][]CommandState `json:"constructors"`
	Destructors    map[string][]CommandState `json:"destructors"`
}

// NewTerrainState builds the initial per-session state recorded on
// Activate, per spec.md §6's Activate request fields.
func NewTerrainState(sessionID, terrainName, biomeName, tomlPath, terrainDir string, isBackground bool, startTimestamp string, envs map[string]string) *TerrainState {
	return &TerrainState{
		SessionID:      sessionID,
		TerrainName:    terrainName,
		BiomeName:      biomeName,
		TomlPath:       tomlPath,
		TerrainDir:     terrainDir,
		IsBackground:   isBackground,
		StartTimestamp: startTimestamp,
		Envs:           envs,
		Constructors:   map[string][]CommandState{},
		Destructors:    map[string][]CommandState{},
	}
}

// AddCommandsIfNecessary inserts commands under timestamp only if that
// timestamp key is not already present, implementing the
// "State append-only within a batch" invariant (spec.md §8 item 6):
// repeated Execute calls for the same (session, timestamp) never shrink
// or replace the existing command list.
func (s *TerrainState) AddCommandsIfNecessary(isConstructor bool, timestamp string, commands []CommandState) {
	m := s.bucket(isConstructor)
	if _, exists := m[timestamp]; !exists {
		m[timestamp] = commands
	}
}

func (s *TerrainState) bucket(isConstructor bool) map[string][]CommandState {
	if isConstructor {
		return s.Constructors
	}
	return s.Destructors
}

// UpdateCommandStatus mutates the status (and exit code) of one command
// within a batch.
func (s *TerrainState) UpdateCommandStatus(isConstructor bool, timestamp string, index int, status CommandStatus, exitCode *int) error {
	m := s.bucket(isConstructor)
	states, ok := m[timestamp]
	if !ok {
		return errTimestampNotFound(timestamp)
	}
	if index < 0 || index >= len(states) {
		return errIndexNotFound(index)
	}
	states[index].Status = status
	states[index].ExitCode = exitCode
	return nil
}

func (s *TerrainState) SetEndTimestamp(ts string) {
	s.EndTimestamp = ts
}
