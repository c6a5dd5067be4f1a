package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/terrain"
)

func initCmd() *cobra.Command {
	var central bool
	var example bool
	var edit bool

	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Create a new terrain.toml for the current directory",
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			var tomlPath string
			if central {
				tomlPath = clientutil.CentralTomlPath(clientutil.ConfigDir(), cwd)
			} else {
				tomlPath = cwd + string(os.PathSeparator) + terrain.FileName
			}

			if _, statErr := os.Stat(tomlPath); statErr == nil {
				return fmt.Errorf("terrain config already exists at %q", tomlPath)
			}

			var t *terrain.Terrain
			if example {
				t = terrain.Example()
			} else {
				t = terrain.Empty()
			}

			if err := terrain.Save(tomlPath, t); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "created terrain config at %s\n", tomlPath)

			if edit {
				return openInEditor(tomlPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&central, "central", false, "store terrain.toml under the central config directory instead of in-tree")
	cmd.Flags().BoolVar(&example, "example", false, "seed the config with an example biome")
	cmd.Flags().BoolVar(&edit, "edit", false, "open the new config in $EDITOR")
	return cmd
}

// openInEditor execs $EDITOR (default vi) on path, inheriting the
// terminal.
func openInEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
