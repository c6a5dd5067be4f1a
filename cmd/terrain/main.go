// Package main is the CLI entry point for terrain, the client half of
// terrainium's shell-environment manager.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	root := &cobra.Command{
		Use:   "terrain",
		Short: "Per-directory shell-environment manager",
		Long: `terrain loads a declarative, per-directory environment (variables,
aliases, constructor/destructor hooks) when the shell enters a project
directory, optionally selecting a named biome, and tears it down on exit.`,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddGroup(
		&cobra.Group{ID: "config", Title: "Config:"},
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "hooks", Title: "Hooks:"},
	)

	root.AddCommand(initCmd())
	root.AddCommand(editCmd())
	root.AddCommand(generateCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(getCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(enterCmd())
	root.AddCommand(exitCmd())
	root.AddCommand(constructCmd())
	root.AddCommand(destructCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(updateRcCmd())
	root.AddCommand(createConfigCmd())

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
	} else if quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}
