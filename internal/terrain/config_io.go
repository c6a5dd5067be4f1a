package terrain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const FileName = "terrain.toml"

// Load reads and parses a terrain.toml at path.
func Load(path string) (*Terrain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain config: %w", err)
	}

	t := Empty()
	meta, err := toml.Decode(string(data), t)
	if err != nil {
		return nil, fmt.Errorf("parsing terrain config: %w", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		// Non-fatal: surfaced as a warning by callers that care.
		_ = undec
	}

	if t.Biomes == nil {
		t.Biomes = map[string]Biome{}
	}
	if t.Terrain.Envs == nil {
		t.Terrain.Envs = map[string]string{}
	}
	if t.Terrain.Aliases == nil {
		t.Terrain.Aliases = map[string]string{}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating terrain config: %w", err)
	}

	return t, nil
}

// Save writes t as TOML to path, creating parent directories as needed.
// The client is the sole writer of the TOML file (spec.md §4.3).
func Save(path string, t *Terrain) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validating terrain config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating terrain config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".terrain.toml.tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(t); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding terrain config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file into place: %w", err)
	}
	return nil
}

// EscapeDirPath converts an absolute directory path into the form used
// under <config>/terrains/<escaped-path>/terrain.toml, matching spec.md
// §4.3's "central" storage mode. Path separators become "_", leading
// separators are dropped.
func EscapeDirPath(dir string) string {
	clean := filepath.Clean(dir)
	escaped := make([]byte, 0, len(clean))
	for i := 0; i < len(clean); i++ {
		c := clean[i]
		if c == filepath.Separator {
			if len(escaped) == 0 {
				continue
			}
			escaped = append(escaped, '_')
			continue
		}
		escaped = append(escaped, c)
	}
	return string(escaped)
}
