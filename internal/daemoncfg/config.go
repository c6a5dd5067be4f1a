// Package daemoncfg holds terrainiumd's own small runtime config: the
// state root, the per-terrain history size, and the socket path. This is
// never the per-terrain terrain.toml the client owns (spec.md §4.3) —
// the daemon never reads that file.
package daemoncfg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/terrainium/terrainium/internal/statestore"
)

// Config is terrainiumd's optional runtime config, loaded once at
// startup and re-read on SIGHUP.
type Config struct {
	Root        string `toml:"root"`
	HistorySize int    `toml:"history_size"`
	SocketPath  string `toml:"socket_path"`
}

// Default returns the zero-config daemon: state root from
// $XDG_RUNTIME_DIR (or /tmp), default history size, conventional socket
// path under the root.
func Default() *Config {
	root := statestore.DefaultRoot(os.Getenv("XDG_RUNTIME_DIR"))
	return &Config{
		Root:        root,
		HistorySize: statestore.DefaultHistorySize,
		SocketPath:  statestore.SocketPath(root),
	}
}

// Load reads path (if non-empty) and overlays it onto Default(). A
// missing path is not an error: the daemon runs on defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading daemon config %q: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing daemon config %q: %w", path, err)
	}
	if !md.IsDefined("socket_path") {
		cfg.SocketPath = statestore.SocketPath(cfg.Root)
	}
	return cfg, nil
}
