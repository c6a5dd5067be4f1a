package scriptgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const integrationScriptName = "terrainium_init.zsh"

// reExportedVars are the activation env vars the integration script
// re-exports around every `terrain` invocation so the child process sees
// them, per spec.md §4.2's integration-script responsibility (b).
var reExportedVars = []string{
	"FPATH",
	"TERRAIN_NAME",
	"TERRAIN_SESSION_ID",
	"TERRAIN_SELECTED_BIOME",
	"TERRAIN_AUTO_APPLY",
	"TERRAIN_DIR",
}

type integrationData struct {
	ReExports string
}

// buildReExports renders one `typeset {mode}x VAR` guard line per
// activation variable, mirroring the Rust implementation's get_exports.
func buildReExports() string {
	var lines []string
	for _, v := range reExportedVars {
		lines = append(lines, fmt.Sprintf(`    if [ -n "$%s" ]; then typeset -x %s; fi`, v, v))
	}
	return strings.Join(lines, "\n")
}

// RenderIntegrationScript renders the fixed shell-integration script
// installed once under <config>/shell_integration/terrainium_init.zsh.
func RenderIntegrationScript() ([]byte, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := integrationData{ReExports: buildReExports()}
	if err := tmpl.ExecuteTemplate(&buf, "integration.tmpl", data); err != nil {
		return nil, fmt.Errorf("executing integration script template: %w", err)
	}
	return buf.Bytes(), nil
}

// InstallIntegrationScript implements spec.md §4.2's install/update rule:
// write the script if absent; if present and stale, back it up to
// <name>.zsh.bkp before overwriting, then recompile either way.
func InstallIntegrationScript(ctx context.Context, integrationDir string) error {
	if err := os.MkdirAll(integrationDir, 0o755); err != nil {
		return fmt.Errorf("creating shell integration directory: %w", err)
	}

	script, err := RenderIntegrationScript()
	if err != nil {
		return err
	}

	scriptPath := filepath.Join(integrationDir, integrationScriptName)
	compiledPath := strings.TrimSuffix(scriptPath, ".zsh") + ".zwc"

	existing, err := os.ReadFile(scriptPath)
	switch {
	case os.IsNotExist(err):
		if err := os.WriteFile(scriptPath, script, 0o644); err != nil {
			return fmt.Errorf("writing shell integration script: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading existing shell integration script: %w", err)
	case !bytes.Equal(existing, script):
		backupPath := scriptPath + ".bkp"
		if err := os.WriteFile(backupPath, existing, 0o644); err != nil {
			return fmt.Errorf("backing up shell integration script: %w", err)
		}
		if err := os.WriteFile(scriptPath, script, 0o644); err != nil {
			return fmt.Errorf("overwriting shell integration script: %w", err)
		}
	default:
		// Unchanged: still ensure it's compiled (first install may have
		// failed to compile previously).
	}

	return compileScript(ctx, scriptPath, compiledPath)
}

// RcSourceLine is appended to the user's .zshrc by `terrain --update-rc`.
func RcSourceLine(integrationDir string) string {
	return fmt.Sprintf("source %q\n", filepath.Join(integrationDir, integrationScriptName))
}

// UpdateRc appends RcSourceLine to rcPath unless it is already present.
func UpdateRc(rcPath, integrationDir string) error {
	line := RcSourceLine(integrationDir)

	existing, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading rc file %q: %w", rcPath, err)
	}
	if strings.Contains(string(existing), line) {
		return nil
	}

	f, err := os.OpenFile(rcPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening rc file %q: %w", rcPath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing rc file %q: %w", rcPath, err)
	}
	return nil
}
