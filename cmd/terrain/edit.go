package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:     "edit",
		Short:   "Open the current terrain's config in $EDITOR",
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tomlPath string
			if active {
				_, toml, _, _, err := activeTerrain()
				if err != nil {
					return err
				}
				tomlPath = toml
			} else {
				_, toml, _, err := currentTerrain()
				if err != nil {
					return err
				}
				tomlPath = toml
			}

			if err := openInEditor(tomlPath); err != nil {
				return fmt.Errorf("opening editor: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "operate on the currently active terrain rather than walking up from $PWD")
	return cmd
}
