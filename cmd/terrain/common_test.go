package main

import (
	"testing"

	"github.com/terrainium/terrainium/internal/terrain"
)

func TestSelectorFromFlag(t *testing.T) {
	if selectorFromFlag("") != terrain.SelectDefault() {
		t.Errorf("selectorFromFlag(\"\") = %v, want %v", selectorFromFlag(""), terrain.SelectDefault())
	}
	if selectorFromFlag("none") != terrain.SelectBase() {
		t.Errorf("selectorFromFlag(\"none\") = %v, want %v", selectorFromFlag("none"), terrain.SelectBase())
	}
	if selectorFromFlag("work") != terrain.SelectNamed("work") {
		t.Errorf("selectorFromFlag(\"work\") = %v, want %v", selectorFromFlag("work"), terrain.SelectNamed("work"))
	}
}

func TestParsePair(t *testing.T) {
	k, v, err := parsePair("EDITOR=vim")
	if err != nil {
		t.Fatalf("parsePair() error = %v", err)
	}
	if k != "EDITOR" {
		t.Errorf("key = %q, want EDITOR", k)
	}
	if v != "vim" {
		t.Errorf("value = %q, want vim", v)
	}

	if _, _, err = parsePair("no-equals-sign"); err == nil {
		t.Error("parsePair() expected error for missing '=', got nil")
	}
}

func TestResolveUpdateTargetBase(t *testing.T) {
	tm := terrain.Empty()
	target, commit, err := resolveUpdateTarget(tm, "", "")
	if err != nil {
		t.Fatalf("resolveUpdateTarget() error = %v", err)
	}
	target.Envs["A"] = "1"
	commit()
	if tm.Terrain.Envs["A"] != "1" {
		t.Errorf("Terrain.Envs[A] = %q, want 1", tm.Terrain.Envs["A"])
	}
}

func TestResolveUpdateTargetExistingBiome(t *testing.T) {
	tm := terrain.Empty()
	tm.Biomes["work"] = terrain.Biome{Envs: map[string]string{}, Aliases: map[string]string{}}

	target, commit, err := resolveUpdateTarget(tm, "work", "")
	if err != nil {
		t.Fatalf("resolveUpdateTarget() error = %v", err)
	}
	target.Envs["A"] = "1"
	commit()
	if tm.Biomes["work"].Envs["A"] != "1" {
		t.Errorf("Biomes[work].Envs[A] = %q, want 1", tm.Biomes["work"].Envs["A"])
	}
}

func TestResolveUpdateTargetUnknownBiome(t *testing.T) {
	tm := terrain.Empty()
	if _, _, err := resolveUpdateTarget(tm, "missing", ""); err == nil {
		t.Error("resolveUpdateTarget() expected error for unknown biome, got nil")
	}
}

func TestResolveUpdateTargetNewBiome(t *testing.T) {
	tm := terrain.Empty()
	target, commit, err := resolveUpdateTarget(tm, "", "work")
	if err != nil {
		t.Fatalf("resolveUpdateTarget() error = %v", err)
	}
	target.Envs["A"] = "1"
	commit()
	if _, ok := tm.Biomes["work"]; !ok {
		t.Fatal("expected Biomes[work] to be created")
	}
	if tm.Biomes["work"].Envs["A"] != "1" {
		t.Errorf("Biomes[work].Envs[A] = %q, want 1", tm.Biomes["work"].Envs["A"])
	}
}

func TestResolveUpdateTargetNewBiomeAlreadyExists(t *testing.T) {
	tm := terrain.Empty()
	tm.Biomes["work"] = terrain.Biome{}
	if _, _, err := resolveUpdateTarget(tm, "", "work"); err == nil {
		t.Error("resolveUpdateTarget() expected error for already-existing biome, got nil")
	}
}

func TestResolveUpdateTargetInvalidNewBiomeName(t *testing.T) {
	tm := terrain.Empty()
	if _, _, err := resolveUpdateTarget(tm, "", "1bad"); err == nil {
		t.Error("resolveUpdateTarget() expected error for invalid biome name, got nil")
	}
}

func TestBuildStatusRequestExplicitSessionID(t *testing.T) {
	req, err := buildStatusRequest("sess-1", "proj", 0)
	if err != nil {
		t.Fatalf("buildStatusRequest() error = %v", err)
	}
	if req.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", req.SessionID)
	}
	if req.TerrainName != "proj" {
		t.Errorf("TerrainName = %q, want proj", req.TerrainName)
	}
	if req.Recent != nil {
		t.Errorf("Recent = %v, want nil", req.Recent)
	}
}

func TestBuildStatusRequestRecentConvertsToZeroBasedIndex(t *testing.T) {
	req, err := buildStatusRequest("", "proj", 2)
	if err != nil {
		t.Fatalf("buildStatusRequest() error = %v", err)
	}
	if req.Recent == nil {
		t.Fatal("Recent = nil, want non-nil")
	}
	if *req.Recent != 1 {
		t.Errorf("*Recent = %d, want 1", *req.Recent)
	}
}

func TestBuildStatusRequestRequiresTerrainNameOutsideActiveSession(t *testing.T) {
	t.Setenv("TERRAIN_DIR", "")
	t.Setenv("TERRAIN_SESSION_ID", "")
	if _, err := buildStatusRequest("", "", 1); err == nil {
		t.Error("buildStatusRequest() expected error outside an active session, got nil")
	}
}
