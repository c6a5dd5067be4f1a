package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/scriptgen"
	"github.com/terrainium/terrainium/internal/terrain"
)

func generateCmd() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Render and compile activation scripts for every biome",
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
			scriptsDir := clientutil.ScriptsDir(clientutil.ConfigDir())

			for _, sel := range selectors {
				biomeName, _, err := t.Resolve(sel)
				if err != nil {
					return err
				}
				env, results, err := resolver.Resolve(t, sel, dir, biomeName)
				if err != nil {
					return err
				}
				logValidationResults(results)

				script, err := scriptgen.RenderScript(env)
				if err != nil {
					return fmt.Errorf("rendering script for biome %q: %w", biomeName, err)
				}
				if err := scriptgen.WriteAndCompile(context.Background(), scriptsDir, biomeName, script); err != nil {
					return fmt.Errorf("compiling script for biome %q: %w", biomeName, err)
				}
				fmt.Fprintf(os.Stderr, "generated %s\n", biomeName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "operate on the currently active terrain rather than walking up from $PWD")
	return cmd
}

func namedSelectors(t *terrain.Terrain) []terrain.Selector {
	sels := make([]terrain.Selector, 0, len(t.Biomes))
	for name := range t.Biomes {
		sels = append(sels, terrain.SelectNamed(name))
	}
	return sels
}
