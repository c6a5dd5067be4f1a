package executor

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/terrainium/terrainium/internal/statestore"
	"github.com/terrainium/terrainium/internal/terrain"
)

func newRegistry(t *testing.T, root string) *statestore.Registry {
	t.Helper()
	reg := statestore.NewRegistry(root, time.Minute, nil)
	reg.Put(statestore.NewTerrainState(
		"session-1", "proj", "example_biome", "/proj/terrain.toml", root,
		false, "1700000000", map[string]string{},
	))
	return reg
}

func TestRunMarksSucceededCommands(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root)

	b := Batch{
		SessionID:     "session-1",
		TerrainName:   "proj",
		Timestamp:     "1700000001",
		IsConstructor: true,
		Commands:      []terrain.Command{{Exe: "/bin/sh", Args: []string{"-c", "exit 0"}, Cwd: root}},
		Root:          root,
	}

	if err := Run(context.Background(), reg, b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st, err := statestore.ReadState(root, "proj", "session-1")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	states := st.Constructors["1700000001"]
	if len(states) != 1 {
		t.Fatalf("len(states) = %d, want 1", len(states))
	}
	if states[0].Status != statestore.StatusSucceeded {
		t.Errorf("Status = %v, want %v", states[0].Status, statestore.StatusSucceeded)
	}
	if states[0].ExitCode == nil || *states[0].ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", states[0].ExitCode)
	}
}

func TestRunMarksFailedCommandsWithExitCode(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root)

	b := Batch{
		SessionID:     "session-1",
		TerrainName:   "proj",
		Timestamp:     "1700000002",
		IsConstructor: false,
		Commands:      []terrain.Command{{Exe: "/bin/sh", Args: []string{"-c", "exit 7"}, Cwd: root}},
		Root:          root,
	}

	if err := Run(context.Background(), reg, b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st, err := statestore.ReadState(root, "proj", "session-1")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	states := st.Destructors["1700000002"]
	if len(states) != 1 {
		t.Fatalf("len(states) = %d, want 1", len(states))
	}
	if states[0].Status != statestore.StatusFailed {
		t.Errorf("Status = %v, want %v", states[0].Status, statestore.StatusFailed)
	}
	if states[0].ExitCode == nil || *states[0].ExitCode != 7 {
		t.Errorf("ExitCode = %v, want 7", states[0].ExitCode)
	}
}

func TestRunMarksSpawnFailureWithoutExitCode(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root)

	b := Batch{
		SessionID:     "session-1",
		TerrainName:   "proj",
		Timestamp:     "1700000003",
		IsConstructor: true,
		Commands:      []terrain.Command{{Exe: "/no/such/executable-terrainium-test", Cwd: root}},
		Root:          root,
	}

	if err := Run(context.Background(), reg, b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st, err := statestore.ReadState(root, "proj", "session-1")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	states := st.Constructors["1700000003"]
	if len(states) != 1 {
		t.Fatalf("len(states) = %d, want 1", len(states))
	}
	if states[0].Status != statestore.StatusFailed {
		t.Errorf("Status = %v, want %v", states[0].Status, statestore.StatusFailed)
	}
	if states[0].ExitCode != nil {
		t.Errorf("ExitCode = %v, want nil", states[0].ExitCode)
	}
}

func TestRunWritesCommandOutputToLogFile(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root)

	b := Batch{
		SessionID:     "session-1",
		TerrainName:   "proj",
		Timestamp:     "1700000004",
		IsConstructor: true,
		Commands:      []terrain.Command{{Exe: "/bin/sh", Args: []string{"-c", "echo hello"}, Cwd: root}},
		Root:          root,
	}

	if err := Run(context.Background(), reg, b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st, err := statestore.ReadState(root, "proj", "session-1")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	logPath := st.Constructors["1700000004"][0].LogPath

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log contents = %q, want substring %q", data, "hello")
	}
}

func TestRunConcurrentCommandsInBatch(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root)

	b := Batch{
		SessionID:     "session-1",
		TerrainName:   "proj",
		Timestamp:     "1700000005",
		IsConstructor: true,
		Commands: []terrain.Command{
			{Exe: "/bin/sh", Args: []string{"-c", "exit 0"}, Cwd: root},
			{Exe: "/bin/sh", Args: []string{"-c", "exit 0"}, Cwd: root},
			{Exe: "/bin/sh", Args: []string{"-c", "exit 1"}, Cwd: root},
		},
		Root: root,
	}

	if err := Run(context.Background(), reg, b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st, err := statestore.ReadState(root, "proj", "session-1")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	states := st.Constructors["1700000005"]
	if len(states) != 3 {
		t.Fatalf("len(states) = %d, want 3", len(states))
	}
	if states[0].Status != statestore.StatusSucceeded {
		t.Errorf("states[0].Status = %v, want %v", states[0].Status, statestore.StatusSucceeded)
	}
	if states[1].Status != statestore.StatusSucceeded {
		t.Errorf("states[1].Status = %v, want %v", states[1].Status, statestore.StatusSucceeded)
	}
	if states[2].Status != statestore.StatusFailed {
		t.Errorf("states[2].Status = %v, want %v", states[2].Status, statestore.StatusFailed)
	}
}
