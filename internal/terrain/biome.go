package terrain

import "maps"

// Biome is a named variant of a terrain: env vars, aliases, and
// constructor/destructor command sequences. Envs may contain ${NAME}
// references resolved later by the resolver package.
type Biome struct {
	Envs         map[string]string `toml:"envs" json:"envs"`
	Aliases      map[string]string `toml:"aliases" json:"aliases"`
	Constructors Commands          `toml:"constructors" json:"constructors"`
	Destructors  Commands          `toml:"destructors" json:"destructors"`
}

// Merge overlays other onto b: envs/aliases keys in other win on
// collision, constructors/destructors are concatenated (b's first). The
// receiver and argument are left untouched; a fresh Biome is returned.
func (b Biome) Merge(other Biome) Biome {
	envs := make(map[string]string, len(b.Envs)+len(other.Envs))
	maps.Copy(envs, b.Envs)
	maps.Copy(envs, other.Envs)

	aliases := make(map[string]string, len(b.Aliases)+len(other.Aliases))
	maps.Copy(aliases, b.Aliases)
	maps.Copy(aliases, other.Aliases)

	return Biome{
		Envs:         envs,
		Aliases:      aliases,
		Constructors: b.Constructors.Append(other.Constructors),
		Destructors:  b.Destructors.Append(other.Destructors),
	}
}

// Clone deep-copies a Biome so resolved/merged results never alias the
// terrain's own config maps.
func (b Biome) Clone() Biome {
	envs := make(map[string]string, len(b.Envs))
	maps.Copy(envs, b.Envs)
	aliases := make(map[string]string, len(b.Aliases))
	maps.Copy(aliases, b.Aliases)

	fg := make([]Command, len(b.Constructors.Foreground))
	for i, c := range b.Constructors.Foreground {
		fg[i] = c.Clone()
	}
	bg := make([]Command, len(b.Constructors.Background))
	for i, c := range b.Constructors.Background {
		bg[i] = c.Clone()
	}
	dfg := make([]Command, len(b.Destructors.Foreground))
	for i, c := range b.Destructors.Foreground {
		dfg[i] = c.Clone()
	}
	dbg := make([]Command, len(b.Destructors.Background))
	for i, c := range b.Destructors.Background {
		dbg[i] = c.Clone()
	}

	return Biome{
		Envs:         envs,
		Aliases:      aliases,
		Constructors: Commands{Foreground: fg, Background: bg},
		Destructors:  Commands{Foreground: dfg, Background: dbg},
	}
}

// ExampleBiome returns the biome terrain init --example seeds new
// terrain.toml files with.
func ExampleBiome() Biome {
	return Biome{
		Envs: map[string]string{
			"EDITOR": "vim",
			"PAGER":  "less",
		},
		Aliases: map[string]string{
			"tenter": "terrain enter",
			"texit":  "terrain exit",
		},
		Constructors: Commands{
			Foreground: []Command{{Exe: "/bin/echo", Args: []string{"entering terrain"}}},
		},
		Destructors: Commands{
			Foreground: []Command{{Exe: "/bin/echo", Args: []string{"exiting terrain"}}},
		},
	}
}
