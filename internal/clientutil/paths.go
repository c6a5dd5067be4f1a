// Package clientutil holds the path-resolution and active-session helpers
// shared by every terrain client verb: locating "the current terrain" by
// walking upward from the working directory (spec.md §4.3), and reading
// the activation env vars a shell left behind.
package clientutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/terrainium/terrainium/internal/statestore"
	"github.com/terrainium/terrainium/internal/terrain"
)

// ConfigDir returns terrainium's config root: $XDG_CONFIG_HOME/terrainium
// if set, else ~/.config/terrainium.
func ConfigDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "terrainium")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "terrainium")
}

func ScriptsDir(configDir string) string           { return filepath.Join(configDir, "scripts") }
func ShellIntegrationDir(configDir string) string   { return filepath.Join(configDir, "shell_integration") }
func CentralTerrainsDir(configDir string) string    { return filepath.Join(configDir, "terrains") }

// CentralTomlPath returns the path a directory's terrain.toml would live
// at in central storage mode (spec.md §4.3).
func CentralTomlPath(configDir, dir string) string {
	return filepath.Join(CentralTerrainsDir(configDir), terrain.EscapeDirPath(dir), terrain.FileName)
}

// FindTerrainDir walks upward from startDir looking for either an in-tree
// terrain.toml or a matching entry under <config>/terrains/<escaped>/.
// Returns the terrain directory (the project directory the terrain is
// "about", not necessarily where the toml lives) and the toml's actual
// path.
func FindTerrainDir(startDir, configDir string) (terrainDir, tomlPath string, err error) {
	dir := startDir
	for {
		inTree := filepath.Join(dir, terrain.FileName)
		if _, statErr := os.Stat(inTree); statErr == nil {
			return dir, inTree, nil
		}

		central := CentralTomlPath(configDir, dir)
		if _, statErr := os.Stat(central); statErr == nil {
			return dir, central, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("no terrain.toml found in %q or any parent directory", startDir)
		}
		dir = parent
	}
}

// ActiveSession reads the activation env vars a shell left behind. Absence
// of either is a fatal user error for verbs that require an active terrain
// (exit, construct, destruct, status, --active).
func ActiveSession() (terrainDir, sessionID string, err error) {
	terrainDir = os.Getenv("TERRAIN_DIR")
	sessionID = os.Getenv("TERRAIN_SESSION_ID")
	if terrainDir == "" || sessionID == "" {
		return "", "", fmt.Errorf("no active terrain in this shell (TERRAIN_DIR/TERRAIN_SESSION_ID not set)")
	}
	return terrainDir, sessionID, nil
}

// DaemonRoot returns the daemon's state root: $XDG_RUNTIME_DIR/terrainiumd
// if set, else /tmp/terrainiumd.
func DaemonRoot() string {
	return statestore.DefaultRoot(os.Getenv("XDG_RUNTIME_DIR"))
}

// SocketPath returns the daemon's Unix socket path under DaemonRoot.
func SocketPath() string {
	return statestore.SocketPath(DaemonRoot())
}
