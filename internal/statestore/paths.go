package statestore

import (
	"fmt"
	"path/filepath"
	"regexp"
)

const (
	SocketFileName = "socket"
	PidFileName    = "pid"
	HistoryFile    = "history"
	StateFileName  = "state.json"
)

// DefaultRoot returns the default state-root directory per spec.md §4.6:
// $XDG_RUNTIME_DIR/terrainiumd if set, else /tmp/terrainiumd.
func DefaultRoot(xdgRuntimeDir string) string {
	if xdgRuntimeDir != "" {
		return filepath.Join(xdgRuntimeDir, "terrainiumd")
	}
	return "/tmp/terrainiumd"
}

func SocketPath(root string) string { return filepath.Join(root, SocketFileName) }
func PidPath(root string) string    { return filepath.Join(root, PidFileName) }

func TerrainDir(root, terrainName string) string {
	return filepath.Join(root, terrainName)
}

func HistoryPath(root, terrainName string) string {
	return filepath.Join(TerrainDir(root, terrainName), HistoryFile)
}

func SessionDir(root, terrainName, sessionID string) string {
	return filepath.Join(TerrainDir(root, terrainName), sessionID)
}

func StateFilePath(root, terrainName, sessionID string) string {
	return filepath.Join(SessionDir(root, terrainName, sessionID), StateFileName)
}

var nonNumeric = regexp.MustCompile(`[^0-9]`)

// RemoveNonNumeric strips non-digit characters from a timestamp so it is
// safe to embed in a log filename, per spec.md §4.7.
func RemoveNonNumeric(timestamp string) string {
	return nonNumeric.ReplaceAllString(timestamp, "")
}

// LogPath builds the per-command log file path:
// <root>/<terrain>/<session>/constructors.<idx>.<numeric_ts>.log (or
// destructors.*), matching spec.md §4.6's on-disk layout.
func LogPath(root, terrainName, sessionID string, isConstructor bool, index int, timestamp string) string {
	kind := "destructors"
	if isConstructor {
		kind = "constructors"
	}
	name := fmt.Sprintf("%s.%d.%s.log", kind, index, RemoveNonNumeric(timestamp))
	return filepath.Join(SessionDir(root, terrainName, sessionID), name)
}
