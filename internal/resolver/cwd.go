package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/terrainium/terrainium/internal/terrain"
)

// substituteCwd fills in and expands a command's working directory per
// spec.md §4.1: absent cwd defaults to terrainDir; present cwd is
// ${NAME}-expanded against the merged env map, then joined onto terrainDir
// if relative, then canonicalized. A non-existent cwd with unresolved
// references is downgraded to INFO (the envs may exist once the command
// actually runs); with no unresolved references it is an ERROR.
func substituteCwd(cmd terrain.Command, mergedEnv map[string]string, terrainDir, target string) (terrain.Command, Results) {
	var results Results

	if cmd.Cwd == "" {
		cmd.Cwd = terrainDir
		return cmd, results
	}

	expanded, unresolved := substituteString(cmd.Cwd, mergedEnv)

	path := expanded
	if !filepath.IsAbs(path) {
		path = filepath.Join(terrainDir, path)
	}

	if canon, err := filepath.EvalSymlinks(path); err == nil {
		path = canon
	} else if _, statErr := os.Stat(path); statErr != nil {
		if len(unresolved) > 0 {
			results.Add(LevelInfo, target,
				fmt.Sprintf("cwd %q does not exist yet but contains unresolved reference(s) %v", expanded, unresolved))
		} else {
			results.Add(LevelError, target, fmt.Sprintf("cwd %q does not exist", expanded))
		}
	}

	cmd.Cwd = path
	return cmd, results
}
