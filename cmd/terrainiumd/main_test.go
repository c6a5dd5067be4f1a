package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestStateDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	got := stateDir()
	want := filepath.Join(tmpDir, "terrainiumd")
	if got != want {
		t.Errorf("stateDir() = %q, want %q", got, want)
	}
}

func TestLogFilePath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	got := logFilePath()
	want := filepath.Join(tmpDir, "terrainiumd", "daemon.log")
	if got != want {
		t.Errorf("logFilePath() = %q, want %q", got, want)
	}
}

func TestPidFilePath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	got := pidFilePath()
	want := filepath.Join(tmpDir, "terrainiumd", "pid")
	if got != want {
		t.Errorf("pidFilePath() = %q, want %q", got, want)
	}
}

func TestReadPIDFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pid")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readPIDFile(path)
	if err != nil {
		t.Fatalf("readPIDFile() error = %v", err)
	}
	if got != 12345 {
		t.Errorf("readPIDFile() = %d, want 12345", got)
	}
}

func TestReadPIDFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := readPIDFile(filepath.Join(tmpDir, "pid")); err == nil {
		t.Fatal("readPIDFile() expected error for missing file, got nil")
	}
}

func TestReadPIDFileTrimsWhitespace(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pid")
	if err := os.WriteFile(path, []byte("  42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readPIDFile(path)
	if err != nil {
		t.Fatalf("readPIDFile() error = %v", err)
	}
	if got != 42 {
		t.Errorf("readPIDFile() = %d, want 42", got)
	}
}

func TestNewServiceConfig(t *testing.T) {
	cfg := newServiceConfig("")

	if cfg.Name != serviceName {
		t.Errorf("Name = %q, want %q", cfg.Name, serviceName)
	}
	if len(cfg.Arguments) != 1 || cfg.Arguments[0] != "run" {
		t.Errorf("Arguments = %v, want [run]", cfg.Arguments)
	}
	if v, ok := cfg.Option["UserService"]; !ok || v != true {
		t.Errorf("Option[UserService] = %v, want true", v)
	}
}

func TestNewServiceConfigWithConfigPath(t *testing.T) {
	cfg := newServiceConfig("/etc/terrainiumd/terrainiumd.toml")

	want := []string{"run", "--config", "/etc/terrainiumd/terrainiumd.toml"}
	if len(cfg.Arguments) != len(want) {
		t.Fatalf("Arguments length = %d, want %d", len(cfg.Arguments), len(want))
	}
	for i, arg := range cfg.Arguments {
		if arg != want[i] {
			t.Errorf("Arguments[%d] = %q, want %q", i, arg, want[i])
		}
	}
}

func TestResolvedConfigPathEmpty(t *testing.T) {
	old := cfgFile
	defer func() { cfgFile = old }()
	cfgFile = ""

	got, err := resolvedConfigPath()
	if err != nil {
		t.Fatalf("resolvedConfigPath() error = %v", err)
	}
	if got != "" {
		t.Errorf("resolvedConfigPath() = %q, want empty", got)
	}
}

func TestResolvedConfigPathAbsolutizes(t *testing.T) {
	old := cfgFile
	defer func() { cfgFile = old }()
	cfgFile = "relative.toml"

	got, err := resolvedConfigPath()
	if err != nil {
		t.Fatalf("resolvedConfigPath() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolvedConfigPath() = %q, want absolute", got)
	}
}

func TestServiceUnitPathKnownPlatformShape(t *testing.T) {
	// Only asserts the function doesn't panic and returns a path rooted
	// at the home directory when one is set; platform-specific branches
	// aren't exercised without mocking service.Platform().
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory available")
	}
	if got := serviceUnitPath(); got != "" && !strings.HasPrefix(got, home) {
		t.Errorf("serviceUnitPath() = %q, want a path under %q", got, home)
	}
}

func TestDaemonConfigPidRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pid")
	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readPIDFile(path)
	if err != nil {
		t.Fatalf("readPIDFile() error = %v", err)
	}
	if got != pid {
		t.Errorf("readPIDFile() = %d, want %d", got, pid)
	}
}
