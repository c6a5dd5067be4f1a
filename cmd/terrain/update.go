package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/terrain"
)

func updateCmd() *cobra.Command {
	var setDefault string
	var biome string
	var newBiome string
	var envPairs []string
	var aliasPairs []string
	var autoApply string
	var backup bool
	var active bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the current terrain's config",
		Long: `update mutates the terrain.toml on disk: set the default biome, create
a new biome, or add/overwrite envs and aliases on an existing biome (or
the base terrain with --biome none).`,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir, tomlPath string
			var t *terrain.Terrain
			var err error
			if active {
				dir, tomlPath, _, t, err = activeTerrain()
			} else {
				dir, tomlPath, t, err = currentTerrain()
			}
			_ = dir
			if err != nil {
				return err
			}

			if setDefault != "" {
				if setDefault != terrain.None {
					if _, ok := t.Biomes[setDefault]; !ok {
						return fmt.Errorf("unknown biome %q", setDefault)
					}
					t.DefaultBiome = &setDefault
				} else {
					t.DefaultBiome = nil
				}
				return saveTerrain(tomlPath, t, backup)
			}

			target, commit, err := resolveUpdateTarget(t, biome, newBiome)
			if err != nil {
				return err
			}

			for _, raw := range envPairs {
				k, v, err := parsePair(raw)
				if err != nil {
					return err
				}
				if err := terrain.ValidateIdentifier(k); err != nil {
					return err
				}
				target.Envs[k] = v
			}
			for _, raw := range aliasPairs {
				k, v, err := parsePair(raw)
				if err != nil {
					return err
				}
				if err := terrain.ValidateIdentifier(k); err != nil {
					return err
				}
				target.Aliases[k] = v
			}
			commit()

			if autoApply != "" {
				mode := terrain.AutoApply(autoApply)
				if err := mode.Validate(); err != nil {
					return err
				}
				t.AutoApply = mode
			}

			return saveTerrain(tomlPath, t, backup)
		},
	}

	cmd.Flags().StringVar(&setDefault, "set-default", "", "set the terrain's default biome (\"none\" to clear it)")
	cmd.Flags().StringVar(&biome, "biome", "", `biome to update ("none" for the base terrain)`)
	cmd.Flags().StringVar(&newBiome, "new", "", "create and update a new biome with this name")
	cmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "set an env K=V (repeatable)")
	cmd.Flags().StringArrayVarP(&aliasPairs, "alias", "a", nil, "set an alias K=V (repeatable)")
	cmd.Flags().StringVar(&autoApply, "auto-apply", "", "set the terrain's auto-apply mode")
	cmd.Flags().BoolVar(&backup, "backup", false, "back up the existing terrain.toml before overwriting")
	cmd.Flags().BoolVar(&active, "active", false, "operate on the currently active terrain rather than walking up from $PWD")
	cmd.MarkFlagsMutuallyExclusive("set-default", "biome")
	cmd.MarkFlagsMutuallyExclusive("set-default", "new")
	cmd.MarkFlagsMutuallyExclusive("biome", "new")
	return cmd
}

// resolveUpdateTarget returns the Biome to mutate (a detached copy, since
// map values are not addressable) and a commit function that writes it
// back into t once the caller is done mutating it. For the base terrain
// section, which is a plain struct field, commit is a no-op.
func resolveUpdateTarget(t *terrain.Terrain, biome, newBiome string) (target *terrain.Biome, commit func(), err error) {
	switch {
	case newBiome != "":
		if err := terrain.ValidateIdentifier(newBiome); err != nil {
			return nil, nil, err
		}
		if _, exists := t.Biomes[newBiome]; exists {
			return nil, nil, fmt.Errorf("biome %q already exists", newBiome)
		}
		b := terrain.Biome{Envs: map[string]string{}, Aliases: map[string]string{}}
		return &b, func() { t.Biomes[newBiome] = b }, nil
	case biome == "" || biome == terrain.None:
		return &t.Terrain, func() {}, nil
	default:
		b, ok := t.Biomes[biome]
		if !ok {
			return nil, nil, fmt.Errorf("unknown biome %q", biome)
		}
		return &b, func() { t.Biomes[biome] = b }, nil
	}
}

func saveTerrain(tomlPath string, t *terrain.Terrain, backup bool) error {
	if backup {
		if existing, err := os.ReadFile(tomlPath); err == nil {
			if err := os.WriteFile(tomlPath+".bkp", existing, 0o644); err != nil {
				return fmt.Errorf("backing up terrain config: %w", err)
			}
		}
	}
	return terrain.Save(tomlPath, t)
}
