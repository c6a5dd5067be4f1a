package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/terrainium/terrainium/internal/terrain"
)

// commandKind distinguishes foreground from background for the purposes
// of validation severity (spec.md §4.1: "Missing on PATH -> WARN for
// foreground, ERROR for background").
type commandKind int

const (
	foreground commandKind = iota
	background
)

// validateCommand runs the full command-validation rule set from
// spec.md §4.1 against one command and returns the (possibly-trimmed)
// command plus any Results. Trimming is applied to the returned command
// so downstream cwd substitution/exec operate on the cleaned exe.
func validateCommand(cmd terrain.Command, kind commandKind, target string, terrainDir string) (terrain.Command, Results) {
	var results Results

	if cmd.Exe == "" {
		results.Add(LevelError, target, "command exe is empty")
		return cmd, results
	}

	trimmed := strings.TrimSpace(cmd.Exe)
	if trimmed != cmd.Exe {
		results.AddFix(LevelWarn, target,
			fmt.Sprintf("exe %q has leading/trailing whitespace, trimming", cmd.Exe), FixTrim)
		cmd.Exe = trimmed
	}

	if cmd.Exe == "" {
		results.Add(LevelError, target, "command exe is empty after trimming")
		return cmd, results
	}

	if strings.ContainsAny(cmd.Exe, " \t\n") {
		results.Add(LevelError, target, fmt.Sprintf("exe %q contains embedded whitespace", cmd.Exe))
		return cmd, results
	}

	if cmd.Exe == "sudo" || strings.HasSuffix(cmd.Exe, "/sudo") {
		if kind == foreground {
			results.Add(LevelWarn, target, "command uses sudo: authentication prompt will block the shell")
		} else {
			results.Add(LevelWarn, target, "command uses sudo: not permitted for background commands")
		}
	}

	switch {
	case filepath.IsAbs(cmd.Exe), strings.HasPrefix(cmd.Exe, "./"), strings.HasPrefix(cmd.Exe, "../"):
		path := cmd.Exe
		if !filepath.IsAbs(path) {
			path = filepath.Join(terrainDir, path)
		}
		if err := checkExecutable(path); err != nil {
			results.Add(LevelError, target, fmt.Sprintf("exe %q: %v", cmd.Exe, err))
		}

	default:
		// Bare name: resolved via PATH using the same lookup a real
		// shell performs (mvdan.cc/sh's interp.LookPathDir).
		env := expand.ListEnviron(os.Environ()...)
		if _, err := interp.LookPathDir(terrainDir, env, cmd.Exe); err != nil {
			msg := fmt.Sprintf("exe %q not found on PATH", cmd.Exe)
			if kind == foreground {
				results.Add(LevelWarn, target, msg)
			} else {
				results.Add(LevelError, target, msg)
			}
		}
	}

	return cmd, results
}

// checkExecutable verifies path exists, following symlinks (resolving
// relative link targets against the symlink's own parent directory), and
// that the final regular file has an executable bit set.
func checkExecutable(path string) error {
	resolved, err := resolveSymlink(path, path)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("is not executable")
	}
	return nil
}

// resolveSymlink follows path's symlink chain, joining relative link
// targets onto the parent directory of the link being resolved (not the
// original path), matching the original implementation's
// resolve_symlink.
func resolveSymlink(path, orig string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return path, nil // let the caller's Stat report the real error
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}

	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("failed to read symlink %q: %w", path, err)
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}

	return resolveSymlink(target, orig)
}
