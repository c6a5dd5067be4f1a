package main

import (
	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/resolver"
)

func destructCmd() *cobra.Command {
	var biome string

	cmd := &cobra.Command{
		Use:     "destruct",
		Short:   "Run the active terrain's destructor hooks again",
		GroupID: "hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, tomlPath, sessionID, t, err := activeTerrain()
			if err != nil {
				return err
			}

			sel := selectorFromFlag(biome)
			env, results, err := resolver.Resolve(t, sel, dir, "")
			if err != nil {
				return err
			}
			logValidationResults(results)

			if err := runForegroundCommands(env.Merged.Destructors.Foreground, env.Merged.Envs); err != nil {
				return err
			}
			return dispatchBackgroundCommands(sessionID, terrainName(dir), env.SelectedBiome, dir, tomlPath, false, env.Merged.Destructors.Background, env.Merged.Envs)
		},
	}

	cmd.Flags().StringVar(&biome, "biome", "", `biome whose destructors to run ("none" for the base terrain)`)
	return cmd
}
