package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/terrain"
)

func getCmd() *cobra.Command {
	var biome string
	var aliasesOnly, envsOnly bool
	var aliasName, envName string
	var constructorsOnly, destructorsOnly bool
	var autoApplyOnly bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "get",
		Short:   "Print the resolved environment for a biome",
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _, t, err := currentTerrain()
			if err != nil {
				return err
			}

			sel := selectorFromFlag(biome)
			env, results, err := resolver.Resolve(t, sel, dir, "")
			if err != nil {
				return err
			}
			logValidationResults(results)

			switch {
			case asJSON:
				return printJSON(env)
			case envName != "":
				v, ok := env.Merged.Envs[envName]
				if !ok {
					return fmt.Errorf("unknown env %q", envName)
				}
				fmt.Println(v)
			case aliasName != "":
				v, ok := env.Merged.Aliases[aliasName]
				if !ok {
					return fmt.Errorf("unknown alias %q", aliasName)
				}
				fmt.Println(v)
			case envsOnly:
				printMap(env.Merged.Envs)
			case aliasesOnly:
				printMap(env.Merged.Aliases)
			case constructorsOnly:
				printCommands(env.Merged.Constructors)
			case destructorsOnly:
				printCommands(env.Merged.Destructors)
			case autoApplyOnly:
				fmt.Println(string(env.AutoApply))
			default:
				printFullBlock(t, env)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&biome, "biome", "", `biome to select ("none" for the base terrain; default: the terrain's default_biome)`)
	cmd.Flags().BoolVar(&aliasesOnly, "aliases", false, "print only aliases")
	cmd.Flags().BoolVar(&envsOnly, "envs", false, "print only envs")
	cmd.Flags().StringVarP(&aliasName, "alias", "a", "", "print a single alias's value")
	cmd.Flags().StringVarP(&envName, "env", "e", "", "print a single env's value")
	cmd.Flags().BoolVar(&constructorsOnly, "constructors", false, "print only constructors")
	cmd.Flags().BoolVar(&destructorsOnly, "destructors", false, "print only destructors")
	cmd.Flags().BoolVar(&autoApplyOnly, "auto-apply", false, "print only the auto-apply mode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full resolved environment as JSON")
	return cmd
}

func printJSON(env *resolver.Environment) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func printMap(m map[string]string) {
	for k, v := range m {
		fmt.Printf("%s=%s\n", k, v)
	}
}

func printCommands(c terrain.Commands) {
	for _, cmd := range c.Foreground {
		fmt.Printf("foreground: %s %v\n", cmd.Exe, cmd.Args)
	}
	for _, cmd := range c.Background {
		fmt.Printf("background: %s %v\n", cmd.Exe, cmd.Args)
	}
}

// printFullBlock implements S1's exact default-output shape: fixed
// Default/Selected/Auto Apply lines, then optional sections that are
// entirely omitted (not printed empty) when there is nothing to show.
func printFullBlock(t *terrain.Terrain, env *resolver.Environment) {
	defaultBiome := terrain.None
	if t.DefaultBiome != nil {
		defaultBiome = *t.DefaultBiome
	}
	fmt.Printf("Default Biome: %s   Selected Biome: %s\n", defaultBiome, env.SelectedBiome)
	fmt.Printf("Auto Apply: %s\n", env.AutoApply)

	if len(env.Merged.Envs) > 0 {
		fmt.Println("Envs:")
		printMap(env.Merged.Envs)
	}
	if len(env.Merged.Aliases) > 0 {
		fmt.Println("Aliases:")
		printMap(env.Merged.Aliases)
	}
	if len(env.Merged.Constructors.Foreground) > 0 || len(env.Merged.Constructors.Background) > 0 {
		fmt.Println("Constructors:")
		printCommands(env.Merged.Constructors)
	}
	if len(env.Merged.Destructors.Foreground) > 0 || len(env.Merged.Destructors.Background) > 0 {
		fmt.Println("Destructors:")
		printCommands(env.Merged.Destructors)
	}
}
