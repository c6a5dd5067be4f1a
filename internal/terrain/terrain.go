package terrain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// Terrain is the full parsed content of a terrain.toml: the base biome
// under [terrain], any number of named biomes under [biomes.<name>], an
// optional default biome, and an auto-apply mode.
type Terrain struct {
	DefaultBiome *string   `toml:"default_biome,omitempty" json:"default_biome,omitempty"`
	AutoApply    AutoApply `toml:"auto_apply" json:"auto_apply"`
	Terrain      Biome     `toml:"terrain" json:"terrain"`
	Biomes       map[string]Biome `toml:"biomes" json:"biomes"`
}

// Selector picks which biome to resolve against the base.
type Selector struct {
	// Kind is one of "default", "base", "named".
	Kind string
	Name string
}

func SelectDefault() Selector    { return Selector{Kind: "default"} }
func SelectBase() Selector       { return Selector{Kind: "base"} }
func SelectNamed(n string) Selector { return Selector{Kind: "named", Name: n} }

// Empty returns a Terrain with only the base [terrain] section, no
// biomes, no default, auto_apply off — what `terrain init` (without
// --example) produces, and exactly the shape S1 exercises.
func Empty() *Terrain {
	return &Terrain{
		AutoApply: AutoApplyOff,
		Terrain:   Biome{Envs: map[string]string{}, Aliases: map[string]string{}},
		Biomes:    map[string]Biome{},
	}
}

// Example returns the seeded terrain `terrain init --example` writes.
func Example() *Terrain {
	def := "example_biome"
	return &Terrain{
		DefaultBiome: &def,
		AutoApply:    AutoApplyOff,
		Terrain:      Biome{Envs: map[string]string{}, Aliases: map[string]string{}},
		Biomes: map[string]Biome{
			"example_biome": ExampleBiome(),
		},
	}
}

// Validate checks the terrain-level invariant: default_biome, if set, must
// name an existing biome, and no biome may be named "none" (reserved).
func (t *Terrain) Validate() error {
	if _, reserved := t.Biomes[None]; reserved {
		return fmt.Errorf("biome name %q is reserved for the base terrain", None)
	}
	if t.DefaultBiome != nil {
		if _, ok := t.Biomes[*t.DefaultBiome]; !ok {
			return fmt.Errorf("default_biome %q does not name an existing biome", *t.DefaultBiome)
		}
	}
	for name := range t.Biomes {
		if err := ValidateIdentifier(name); err != nil {
			return fmt.Errorf("biome name: %w", err)
		}
	}
	return nil
}

// Resolve returns the selected biome name and the Biome obtained by
// merging the base terrain with the selected biome (base first, selected
// overrides). Selector "named" with an unknown name is a fatal error, as
// is "default" when default_biome names a biome that has since been
// removed (should not happen if Validate passed, checked again for
// safety).
func (t *Terrain) Resolve(sel Selector) (name string, merged Biome, err error) {
	switch sel.Kind {
	case "base":
		return None, t.Terrain.Clone(), nil
	case "named":
		b, ok := t.Biomes[sel.Name]
		if !ok {
			return "", Biome{}, fmt.Errorf("unknown biome %q", sel.Name)
		}
		return sel.Name, t.Terrain.Merge(b), nil
	case "default":
		if t.DefaultBiome == nil {
			return None, t.Terrain.Clone(), nil
		}
		b, ok := t.Biomes[*t.DefaultBiome]
		if !ok {
			return "", Biome{}, fmt.Errorf("unknown biome %q", *t.DefaultBiome)
		}
		return *t.DefaultBiome, t.Terrain.Merge(b), nil
	default:
		return "", Biome{}, fmt.Errorf("unknown selector kind %q", sel.Kind)
	}
}

// BiomeNames returns the sorted set of selectable biome names, including
// the reserved "none".
func (t *Terrain) BiomeNames() []string {
	names := make([]string, 0, len(t.Biomes)+1)
	names = append(names, None)
	for n := range t.Biomes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Hash returns a hex SHA-256 digest of the terrain's canonical JSON
// representation, used to detect when a running shell's compiled scripts
// are stale relative to the on-disk terrain.toml.
func (t *Terrain) Hash() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("hashing terrain: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
