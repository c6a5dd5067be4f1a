// Package resolver merges a terrain's base and selected biome, resolves
// ${NAME} and cwd substitutions, and validates the result into a fully
// resolved Environment or a structured ValidationError.
package resolver

import (
	"fmt"

	"github.com/terrainium/terrainium/internal/terrain"
)

// Environment is a fully resolved terrain: a Biome whose envs and command
// cwds have been substituted, ready for ScriptGen or the Executor.
type Environment struct {
	TerrainName   string
	SelectedBiome string
	DefaultBiome  *string
	AutoApply     terrain.AutoApply
	Merged        terrain.Biome
}

// Resolve implements spec.md §4.1 end to end: biome selection, merge,
// env substitution, cwd substitution, and command validation. Any ERROR
// in the accumulated Results fails the whole resolution with a
// *ValidationError; WARN/INFO are returned alongside a successful
// Environment for the caller to log.
func Resolve(t *terrain.Terrain, sel terrain.Selector, terrainDir, terrainName string) (*Environment, Results, error) {
	var all Results

	biomeName, merged, err := t.Resolve(sel)
	if err != nil {
		return nil, all, fmt.Errorf("selecting biome: %w", err)
	}

	substitutedEnvs, envResults := substituteEnvs(merged.Envs)
	all.Append(envResults)
	merged.Envs = substitutedEnvs

	merged.Constructors.Foreground, all = resolveCommands(merged.Constructors.Foreground, merged.Envs, terrainDir, "constructors.foreground", foreground, all)
	merged.Constructors.Background, all = resolveCommands(merged.Constructors.Background, merged.Envs, terrainDir, "constructors.background", background, all)
	merged.Destructors.Foreground, all = resolveCommands(merged.Destructors.Foreground, merged.Envs, terrainDir, "destructors.foreground", foreground, all)
	merged.Destructors.Background, all = resolveCommands(merged.Destructors.Background, merged.Envs, terrainDir, "destructors.background", background, all)

	if all.HasErrors() {
		return nil, all, &ValidationError{Results: all}
	}

	env := &Environment{
		TerrainName:   terrainName,
		SelectedBiome: biomeName,
		DefaultBiome:  t.DefaultBiome,
		AutoApply:     t.AutoApply,
		Merged:        merged,
	}
	return env, all, nil
}

func resolveCommands(cmds []terrain.Command, mergedEnv map[string]string, terrainDir, targetPrefix string, kind commandKind, acc Results) ([]terrain.Command, Results) {
	out := make([]terrain.Command, len(cmds))
	for i, cmd := range cmds {
		target := fmt.Sprintf("%s[%d]", targetPrefix, i)

		cmd, validateResults := validateCommand(cmd, kind, target, terrainDir)
		acc.Append(validateResults)

		cmd, cwdResults := substituteCwd(cmd, mergedEnv, terrainDir, target)
		acc.Append(cwdResults)

		out[i] = cmd
	}
	return out, acc
}

// ActivationEnvVars returns the fixed set of TERRAIN_* variables spec.md
// §4.2 says the compiled script sets, given a session id and whether this
// activation was auto-applied.
func (e *Environment) ActivationEnvVars(sessionID, terrainDir string, isAutoApply bool) map[string]string {
	vars := map[string]string{
		"TERRAIN_NAME":           e.TerrainName,
		"TERRAIN_SESSION_ID":     sessionID,
		"TERRAIN_SELECTED_BIOME": e.SelectedBiome,
		"TERRAIN_DIR":            terrainDir,
	}
	if isAutoApply {
		vars["TERRAIN_AUTO_APPLY"] = string(e.AutoApply)
	}
	return vars
}
