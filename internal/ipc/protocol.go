// Package ipc implements the length-prefixed framed message exchange
// between terrain and terrainiumd over a local Unix domain socket,
// generalizing the teacher's internal/control newline-delimited JSON
// protocol (internal/control/protocol.go) into the explicit 4-byte
// big-endian length prefix spec.md §4.4 requires.
package ipc

import (
	"encoding/json"

	"github.com/terrainium/terrainium/internal/terrain"
)

// ProtocolVersion lets both sides detect a schema drift; the daemon logs
// and proceeds rather than refusing an unknown version, matching the
// teacher's tolerant version check in control.Server.handleConn.
const ProtocolVersion = 1

// Kind discriminates the envelope's payload; it travels inside the
// envelope itself so any length-delimited wire format could carry it.
type Kind string

const (
	KindActivate   Kind = "activate"
	KindExecute    Kind = "execute"
	KindDeactivate Kind = "deactivate"
	KindStatus     Kind = "status"
)

// Envelope is the outermost frame body: a discriminator plus the raw
// request payload, deferring decode of Payload until Kind is known.
type Envelope struct {
	Version int             `json:"version"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ActivateRequest starts tracking a new session and, if Constructors is
// non-empty, dispatches its background constructors immediately.
type ActivateRequest struct {
	SessionID      string            `json:"session_id"`
	TerrainName    string            `json:"terrain_name"`
	BiomeName      string            `json:"biome_name"`
	TerrainDir     string            `json:"terrain_dir"`
	TomlPath       string            `json:"toml_path"`
	StartTimestamp string            `json:"start_timestamp"`
	IsBackground   bool              `json:"is_background"`
	Envs           map[string]string `json:"envs"`
	Constructors   []terrain.Command `json:"constructors,omitempty"`
}

// ExecuteRequest dispatches a batch of commands (background constructors
// or destructors issued outside of Activate/Deactivate, e.g. `terrain
// construct`/`terrain destruct`) under a (session, timestamp) key.
type ExecuteRequest struct {
	SessionID   string            `json:"session_id,omitempty"`
	TerrainName string            `json:"terrain_name"`
	BiomeName   string            `json:"biome_name"`
	TerrainDir  string            `json:"terrain_dir"`
	TomlPath    string            `json:"toml_path"`
	IsConstructor bool            `json:"is_constructor"`
	Timestamp   string            `json:"timestamp"`
	Envs        map[string]string `json:"envs"`
	Commands    []terrain.Command `json:"commands"`
}

// DeactivateRequest ends a session: the end timestamp is recorded first,
// then any background destructors are dispatched.
type DeactivateRequest struct {
	SessionID      string            `json:"session_id"`
	TerrainName    string            `json:"terrain_name"`
	EndTimestamp   string            `json:"end_timestamp"`
	Destructors    []terrain.Command `json:"destructors,omitempty"`
}

// StatusRequest asks for a TerrainState either by explicit session id or
// by its position in the terrain's history (0 = most recent).
type StatusRequest struct {
	TerrainName string `json:"terrain_name"`
	SessionID   string `json:"session_id,omitempty"`
	Recent      *int   `json:"recent,omitempty"`
}

// Response is the single reply to any request: Body carries the kind's
// success payload (empty for Activate/Execute/Deactivate acknowledgements,
// the TerrainState for Status), Error is set instead on failure.
type Response struct {
	Body  json.RawMessage `json:"body,omitempty"`
	Error string          `json:"error,omitempty"`
}
