// Package main is the entry point for terrainiumd, the supervisor
// daemon half of terrainium's shell-environment manager.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	root := buildRootCmd()
	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	setupLoggingWithWriter(os.Stderr)
}

func setupLoggingWithWriter(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// stateDir returns the directory for terrainiumd's service-level files
// (the service log directory and daemon.log). The pid file the running
// daemon writes, and that reload and status read, is
// statestore.PidPath under daemoncfg.Config.Root, not this directory.
func stateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "terrainiumd")
}

func pidFilePath() string { return filepath.Join(stateDir(), "pid") }
func logFilePath() string { return filepath.Join(stateDir(), "daemon.log") }
