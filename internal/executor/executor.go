// Package executor runs constructor/destructor command batches and keeps
// their persisted statestore.CommandState in sync with the real process
// lifecycle, the way the teacher's internal/render.CommandRenderer drives
// exec.CommandContext, generalized from "run once, capture stdout" to
// "run detached, stream to a log file, track status transitions".
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/terrainium/terrainium/internal/statestore"
	"github.com/terrainium/terrainium/internal/terrain"
)

// Batch is one Execute/Activate/Deactivate dispatch: a named, timestamped
// group of commands run against a shared registry-backed session state.
type Batch struct {
	SessionID   string
	TerrainName string
	Timestamp   string
	IsConstructor bool
	Commands    []terrain.Command
	Env         map[string]string
	Root        string
}

// Run executes every command in the batch concurrently, persisting status
// transitions (Starting -> Running -> Succeeded/Failed) through reg as each
// command starts and finishes. It returns once every command has exited (or
// failed to spawn); callers that want fire-and-forget background dispatch
// should call Run in its own goroutine.
func Run(ctx context.Context, reg *statestore.Registry, b Batch, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	states := make([]statestore.CommandState, len(b.Commands))
	for i, cmd := range b.Commands {
		states[i] = statestore.CommandState{
			Command: cmd,
			LogPath: statestore.LogPath(b.Root, b.TerrainName, b.SessionID, b.IsConstructor, i, b.Timestamp),
			Status:  statestore.StatusStarting,
		}
	}

	err := reg.WithLock(b.SessionID, b.TerrainName, func(st *statestore.TerrainState) error {
		st.AddCommandsIfNecessary(b.IsConstructor, b.Timestamp, states)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording batch start: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(len(b.Commands))
	for i, cmd := range b.Commands {
		i, cmd := i, cmd
		go func() {
			defer wg.Done()
			runOne(ctx, reg, b, i, cmd, log)
		}()
	}
	wg.Wait()

	return nil
}

// runOne spawns a single command: opens its log file for create-or-append,
// duplicates that handle across both stdout and stderr, launches the
// process with the batch's merged environment and cwd and no stdin, marks
// it Running once spawned, and persists its terminal status once it exits
// (or its spawn failure, if exec.Cmd.Start never got the process off the
// ground).
func runOne(ctx context.Context, reg *statestore.Registry, b Batch, index int, cmd terrain.Command, log *slog.Logger) {
	logPath := statestore.LogPath(b.Root, b.TerrainName, b.SessionID, b.IsConstructor, index, b.Timestamp)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Error("opening command log file", "path", logPath, "error", err)
		markTerminal(reg, b, index, statestore.StatusFailed, nil)
		return
	}
	defer logFile.Close()

	proc := exec.CommandContext(ctx, cmd.Exe, cmd.Args...)
	proc.Dir = cmd.Cwd
	proc.Env = mergeEnv(os.Environ(), b.Env)
	proc.Stdin = nil
	proc.Stdout = logFile
	proc.Stderr = logFile

	if err := proc.Start(); err != nil {
		log.Error("spawning command", "exe", cmd.Exe, "error", err)
		markTerminal(reg, b, index, statestore.StatusFailed, nil)
		return
	}

	if err := markRunning(reg, b, index); err != nil {
		log.Error("persisting running status", "error", err)
	}

	waitErr := proc.Wait()
	if waitErr == nil {
		code := 0
		markTerminal(reg, b, index, statestore.StatusSucceeded, &code)
		return
	}

	var exitErr *exec.ExitError
	if asExitError(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		markTerminal(reg, b, index, statestore.StatusFailed, &code)
		return
	}

	// Process never produced an exit code (killed by signal, context
	// cancellation, etc): Failed with no exit code.
	markTerminal(reg, b, index, statestore.StatusFailed, nil)
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

func markRunning(reg *statestore.Registry, b Batch, index int) error {
	return reg.WithLock(b.SessionID, b.TerrainName, func(st *statestore.TerrainState) error {
		return st.UpdateCommandStatus(b.IsConstructor, b.Timestamp, index, statestore.StatusRunning, nil)
	})
}

func markTerminal(reg *statestore.Registry, b Batch, index int, status statestore.CommandStatus, exitCode *int) {
	err := reg.WithLock(b.SessionID, b.TerrainName, func(st *statestore.TerrainState) error {
		return st.UpdateCommandStatus(b.IsConstructor, b.Timestamp, index, status, exitCode)
	})
	if err != nil {
		slog.Error("persisting terminal command status", "error", err)
	}
}

// mergeEnv overlays overrides onto base, replacing keys that already exist
// rather than appending duplicates, mirroring the teacher's render.mergeEnv.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	env := make([]string, len(base))
	copy(env, base)

	existing := make(map[string]int, len(env))
	for i, entry := range env {
		for j := 0; j < len(entry); j++ {
			if entry[j] == '=' {
				existing[entry[:j]] = i
				break
			}
		}
	}

	for k, v := range overrides {
		if idx, ok := existing[k]; ok {
			env[idx] = k + "=" + v
		} else {
			env = append(env, k+"="+v)
		}
	}
	return env
}
