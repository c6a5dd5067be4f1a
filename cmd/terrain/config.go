package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/scriptgen"
)

// updateRcCmd implements the client's config-mode `--update-rc [PATH]`,
// appending a source line for the shell integration script to the given
// rc file (default ~/.zshrc) if it is not already present.
func updateRcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update-rc [path]",
		Short:   "Append the shell integration source line to an rc file",
		GroupID: "config",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rcPath := ""
			if len(args) > 0 {
				rcPath = args[0]
			}
			if rcPath == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolving home directory: %w", err)
				}
				rcPath = filepath.Join(home, ".zshrc")
			}

			integrationDir := clientutil.ShellIntegrationDir(clientutil.ConfigDir())
			if err := scriptgen.InstallIntegrationScript(context.Background(), integrationDir); err != nil {
				return fmt.Errorf("installing shell integration script: %w", err)
			}
			if err := scriptgen.UpdateRc(rcPath, integrationDir); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "updated %s\n", rcPath)
			return nil
		},
	}
	return cmd
}

// createConfigCmd implements `--create-config`: bootstraps the central
// config directory (scripts/, shell_integration/, terrains/) and installs
// the fixed shell integration script, without touching any rc file.
func createConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create-config",
		Short:   "Bootstrap terrainium's config directory",
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := clientutil.ConfigDir()
			for _, dir := range []string{
				clientutil.ScriptsDir(configDir),
				clientutil.ShellIntegrationDir(configDir),
				clientutil.CentralTerrainsDir(configDir),
			} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating %q: %w", dir, err)
				}
			}

			if err := scriptgen.InstallIntegrationScript(context.Background(), clientutil.ShellIntegrationDir(configDir)); err != nil {
				return fmt.Errorf("installing shell integration script: %w", err)
			}

			fmt.Fprintf(os.Stderr, "initialized config directory at %s\n", configDir)
			return nil
		},
	}
}
