package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/terrain"
)

func validateCmd() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Validate the current terrain and every biome it defines",
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			var t *terrain.Terrain
			var err error
			if active {
				dir, _, _, t, err = activeTerrain()
			} else {
				dir, _, t, err = currentTerrain()
			}
			if err != nil {
				return err
			}

			selectors := append([]terrain.Selector{terrain.SelectBase()}, namedSelectors(t)...)
			failed := false
			for _, sel := range selectors {
				biomeName, _, resolveErr := t.Resolve(sel)
				if resolveErr != nil {
					return resolveErr
				}
				_, results, err := resolver.Resolve(t, sel, dir, biomeName)
				logValidationResults(results)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", biomeName, err)
					failed = true
					continue
				}
				fmt.Fprintf(os.Stderr, "%s: ok\n", biomeName)
			}
			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "operate on the currently active terrain rather than walking up from $PWD")
	return cmd
}
