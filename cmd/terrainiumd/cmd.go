package main

import (
	"github.com/spf13/cobra"
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "terrainiumd",
		Short: "Supervisor daemon for terrainium background hooks",
		Long: `terrainiumd accepts Activate, Execute, Deactivate, and Status requests
over a local Unix socket, spawns background constructor/destructor
hooks, streams their output to per-run log files, and persists
per-session state across the hooks' lifetime.`,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "daemon runtime config file (default: none, built-in defaults apply)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "daemon", Title: "Daemon:"},
		&cobra.Group{ID: "service", Title: "Service:"},
	)

	root.AddCommand(runCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(installCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(enableCmd())
	root.AddCommand(disableCmd())
	root.AddCommand(startCmd())
	root.AddCommand(stopCmd())
	root.AddCommand(reloadCmd())

	return root
}
