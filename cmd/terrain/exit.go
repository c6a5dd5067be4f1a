package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/ipc"
	"github.com/terrainium/terrainium/internal/resolver"
)

func exitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exit",
		Short:   "Exit the active terrain, running its destructor hooks",
		GroupID: "session",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, tomlPath, sessionID, t, err := activeTerrain()
			if err != nil {
				return err
			}

			sel := selectorFromFlag(os.Getenv("TERRAIN_SELECTED_BIOME"))
			env, results, err := resolver.Resolve(t, sel, dir, terrainName(dir))
			if err != nil {
				return err
			}
			logValidationResults(results)

			if err := runForegroundCommands(env.Merged.Destructors.Foreground, env.Merged.Envs); err != nil {
				return err
			}

			client := ipc.NewClient(clientutil.SocketPath())
			req := ipc.DeactivateRequest{
				SessionID:    sessionID,
				TerrainName:  terrainName(dir),
				EndTimestamp: batchTimestamp(),
				Destructors:  env.Merged.Destructors.Background,
			}
			if err := client.RoundTrip(ipc.KindDeactivate, req, nil); err != nil {
				return fmt.Errorf("deactivating session: %w", err)
			}
			return nil
		},
	}
	return cmd
}
