package clientutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terrainium/terrainium/internal/terrain"
)

func TestFindTerrainDirInTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, terrain.FileName), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, toml, err := FindTerrainDir(sub, t.TempDir())
	if err != nil {
		t.Fatalf("FindTerrainDir() error = %v", err)
	}
	if dir != root {
		t.Errorf("dir = %q, want %q", dir, root)
	}
	want := filepath.Join(root, terrain.FileName)
	if toml != want {
		t.Errorf("toml = %q, want %q", toml, want)
	}
}

func TestFindTerrainDirCentralStorage(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "myproject")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}

	configDir := t.TempDir()
	centralPath := CentralTomlPath(configDir, projectDir)
	if err := os.MkdirAll(filepath.Dir(centralPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(centralPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, toml, err := FindTerrainDir(projectDir, configDir)
	if err != nil {
		t.Fatalf("FindTerrainDir() error = %v", err)
	}
	if dir != projectDir {
		t.Errorf("dir = %q, want %q", dir, projectDir)
	}
	if toml != centralPath {
		t.Errorf("toml = %q, want %q", toml, centralPath)
	}
}

func TestFindTerrainDirNotFound(t *testing.T) {
	if _, _, err := FindTerrainDir(t.TempDir(), t.TempDir()); err == nil {
		t.Fatal("FindTerrainDir() expected error, got nil")
	}
}

func TestActiveSessionRequiresBothVars(t *testing.T) {
	t.Setenv("TERRAIN_DIR", "")
	t.Setenv("TERRAIN_SESSION_ID", "")
	if _, _, err := ActiveSession(); err == nil {
		t.Fatal("ActiveSession() expected error when vars are unset, got nil")
	}

	t.Setenv("TERRAIN_DIR", "/proj")
	t.Setenv("TERRAIN_SESSION_ID", "sess-1")
	dir, sid, err := ActiveSession()
	if err != nil {
		t.Fatalf("ActiveSession() error = %v", err)
	}
	if dir != "/proj" {
		t.Errorf("dir = %q, want /proj", dir)
	}
	if sid != "sess-1" {
		t.Errorf("sid = %q, want sess-1", sid)
	}
}
