package statestore

import (
	"testing"

	"github.com/terrainium/terrainium/internal/terrain"
)

func newTestState() *TerrainState {
	return NewTerrainState(
		"session-1", "proj", "example_biome", "/proj/terrain.toml", "/proj",
		false, "1700000000",
		map[string]string{"TERRAIN_NAME": "proj"},
	)
}

func TestAddCommandsIfNecessaryAppendOnlyWithinBatch(t *testing.T) {
	s := newTestState()

	first := []CommandState{{Command: terrain.Command{Exe: "echo"}, Status: StatusStarting}}
	s.AddCommandsIfNecessary(true, "ts-1", first)

	// A second call for the same timestamp must not replace or shrink the
	// batch already recorded (spec.md §8 invariant 6).
	second := []CommandState{{Command: terrain.Command{Exe: "other"}, Status: StatusStarting}}
	s.AddCommandsIfNecessary(true, "ts-1", second)

	if len(s.Constructors["ts-1"]) != 1 {
		t.Fatalf("len(Constructors[ts-1]) = %d, want 1", len(s.Constructors["ts-1"]))
	}
	if s.Constructors["ts-1"][0].Command.Exe != "echo" {
		t.Errorf("Command.Exe = %q, want echo", s.Constructors["ts-1"][0].Command.Exe)
	}
}

func TestUpdateCommandStatusReflectsLastWrite(t *testing.T) {
	s := newTestState()
	s.AddCommandsIfNecessary(true, "ts-1", []CommandState{
		{Command: terrain.Command{Exe: "echo"}, Status: StatusStarting},
	})

	if err := s.UpdateCommandStatus(true, "ts-1", 0, StatusRunning, nil); err != nil {
		t.Fatalf("UpdateCommandStatus() error = %v", err)
	}
	if s.Constructors["ts-1"][0].Status != StatusRunning {
		t.Errorf("Status = %v, want %v", s.Constructors["ts-1"][0].Status, StatusRunning)
	}

	code := 0
	if err := s.UpdateCommandStatus(true, "ts-1", 0, StatusSucceeded, &code); err != nil {
		t.Fatalf("UpdateCommandStatus() error = %v", err)
	}
	if s.Constructors["ts-1"][0].Status != StatusSucceeded {
		t.Errorf("Status = %v, want %v", s.Constructors["ts-1"][0].Status, StatusSucceeded)
	}
	if s.Constructors["ts-1"][0].ExitCode != &code {
		t.Errorf("ExitCode = %v, want %v", s.Constructors["ts-1"][0].ExitCode, &code)
	}
}

func TestUpdateCommandStatusUnknownTimestamp(t *testing.T) {
	s := newTestState()
	if err := s.UpdateCommandStatus(true, "missing", 0, StatusRunning, nil); err == nil {
		t.Fatal("UpdateCommandStatus() expected error for unknown timestamp, got nil")
	}
}

func TestUpdateCommandStatusIndexOutOfRange(t *testing.T) {
	s := newTestState()
	s.AddCommandsIfNecessary(false, "ts-1", []CommandState{
		{Command: terrain.Command{Exe: "echo"}, Status: StatusStarting},
	})
	if err := s.UpdateCommandStatus(false, "ts-1", 3, StatusRunning, nil); err == nil {
		t.Fatal("UpdateCommandStatus() expected error for out-of-range index, got nil")
	}
}
