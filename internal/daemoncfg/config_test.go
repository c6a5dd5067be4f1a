package daemoncfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Root != "/tmp/terrainiumd" {
		t.Errorf("Root = %q, want /tmp/terrainiumd", cfg.Root)
	}
	if cfg.HistorySize != 5 {
		t.Errorf("HistorySize = %d, want 5", cfg.HistorySize)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terrainiumd.toml")
	if err := os.WriteFile(path, []byte(`
root = "/custom/root"
history_size = 10
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Root != "/custom/root" {
		t.Errorf("Root = %q, want /custom/root", cfg.Root)
	}
	if cfg.HistorySize != 10 {
		t.Errorf("HistorySize = %d, want 10", cfg.HistorySize)
	}
	if cfg.SocketPath != "/custom/root/socket" {
		t.Errorf("SocketPath = %q, want /custom/root/socket", cfg.SocketPath)
	}
}

func TestLoadNonexistentFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
}
