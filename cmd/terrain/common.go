package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/terrain"
)

// currentTerrain locates and loads the terrain.toml for the current
// directory, per spec.md §4.3's upward-walk resolution.
func currentTerrain() (dir, tomlPath string, t *terrain.Terrain, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", nil, fmt.Errorf("getting current directory: %w", err)
	}

	dir, tomlPath, err = clientutil.FindTerrainDir(cwd, clientutil.ConfigDir())
	if err != nil {
		return "", "", nil, err
	}

	t, err = terrain.Load(tomlPath)
	if err != nil {
		return "", "", nil, err
	}
	return dir, tomlPath, t, nil
}

// activeTerrain is like currentTerrain but additionally requires and
// returns the active session's env vars, for verbs that operate on an
// already-entered terrain (exit, and the --active variants of construct
// and destruct).
func activeTerrain() (dir, tomlPath, sessionID string, t *terrain.Terrain, err error) {
	activeDir, sessionID, err := clientutil.ActiveSession()
	if err != nil {
		return "", "", "", nil, err
	}

	tomlPath, err = resolveTomlForDir(activeDir)
	if err != nil {
		return "", "", "", nil, err
	}

	t, err = terrain.Load(tomlPath)
	if err != nil {
		return "", "", "", nil, err
	}
	return activeDir, tomlPath, sessionID, t, nil
}

func resolveTomlForDir(dir string) (string, error) {
	inTree := dir + string(os.PathSeparator) + terrain.FileName
	if _, statErr := os.Stat(inTree); statErr == nil {
		return inTree, nil
	}
	central := clientutil.CentralTomlPath(clientutil.ConfigDir(), dir)
	if _, statErr := os.Stat(central); statErr == nil {
		return central, nil
	}
	return "", fmt.Errorf("no terrain.toml found for active terrain %q", dir)
}

// selectorFromFlag parses a --biome flag value into a terrain.Selector:
// empty selects the default, "none" selects the base, anything else
// names a biome.
func selectorFromFlag(biome string) terrain.Selector {
	switch biome {
	case "":
		return terrain.SelectDefault()
	case terrain.None:
		return terrain.SelectBase()
	default:
		return terrain.SelectNamed(biome)
	}
}

// terrainName derives the terrain's name: the TERRAIN_NAME env var the
// integration script re-exports if set (the active-session case),
// otherwise the terrain directory's base name.
func terrainName(dir string) string {
	if name := os.Getenv("TERRAIN_NAME"); name != "" {
		return name
	}
	return strings.TrimSuffix(dir[strings.LastIndex(dir, string(os.PathSeparator))+1:], string(os.PathSeparator))
}

// parsePair splits a "K=V" flag value, returning a UserConfig-flavored
// error (spec.md §7) if there is no '='.
func parsePair(raw string) (key, value string, err error) {
	k, v, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", fmt.Errorf("malformed pair %q: expected K=V", raw)
	}
	return k, v, nil
}

// logValidationResults prints WARN/INFO validation results to stderr.
// ERROR-level results are skipped: resolver.Resolve already reports
// those through its returned error.
func logValidationResults(results resolver.Results) {
	for _, r := range results.Sorted() {
		if r.Level == resolver.LevelError {
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", r.Level, r.Message, r.Target)
	}
}
