package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/ipc"
	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/scriptgen"
)

func enterCmd() *cobra.Command {
	var biome string
	var autoApply bool

	cmd := &cobra.Command{
		Use:     "enter",
		Short:   "Enter the current terrain, spawning a shell with its environment",
		GroupID: "session",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, tomlPath, t, err := currentTerrain()
			if err != nil {
				return err
			}

			name := terrainName(dir)
			sel := selectorFromFlag(biome)
			env, results, err := resolver.Resolve(t, sel, dir, name)
			if err != nil {
				return err
			}
			logValidationResults(results)

			sessionID := uuid.New().String()
			startTimestamp := batchTimestamp()

			scriptsDir := clientutil.ScriptsDir(clientutil.ConfigDir())
			script, err := scriptgen.RenderScript(env)
			if err != nil {
				return fmt.Errorf("rendering activation script: %w", err)
			}
			if err := scriptgen.WriteAndCompile(context.Background(), scriptsDir, env.SelectedBiome, script); err != nil {
				return fmt.Errorf("compiling activation script: %w", err)
			}

			if err := runForegroundCommands(env.Merged.Constructors.Foreground, env.Merged.Envs); err != nil {
				return err
			}

			client := ipc.NewClient(clientutil.SocketPath())
			req := ipc.ActivateRequest{
				SessionID:      sessionID,
				TerrainName:    name,
				BiomeName:      env.SelectedBiome,
				TerrainDir:     dir,
				TomlPath:       tomlPath,
				StartTimestamp: startTimestamp,
				IsBackground:   env.AutoApply.RunsDestructorsOnExit(),
				Envs:           env.Merged.Envs,
				Constructors:   env.Merged.Constructors.Background,
			}
			if err := client.RoundTrip(ipc.KindActivate, req, nil); err != nil {
				return fmt.Errorf("activating session: %w", err)
			}

			activationEnv := env.ActivationEnvVars(sessionID, dir, autoApply)
			activationEnv["FPATH"] = scriptsDir + ":" + os.Getenv("FPATH")
			activationEnv["TERRAIN_INIT_SCRIPT"] = filepath.Join(scriptsDir, fmt.Sprintf("terrain-%s.zsh", env.SelectedBiome))
			activationEnv["TERRAIN_INIT_FN"] = "terrain_enter"

			shell := os.Getenv("SHELL")
			if shell == "" {
				shell = "/bin/zsh"
			}

			childEnv := mergeOSEnv(activationEnv)
			if env.AutoApply.ReplacesShell() && autoApply {
				return unix.Exec(shell, []string{shell}, childEnv)
			}

			c := exec.Command(shell)
			c.Env = childEnv
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			return c.Run()
		},
	}

	cmd.Flags().StringVar(&biome, "biome", "", `biome to enter ("none" for the base terrain; default: the terrain's default_biome)`)
	cmd.Flags().BoolVar(&autoApply, "auto-apply", false, "mark this entry as auto-applied by the shell integration script")
	return cmd
}
