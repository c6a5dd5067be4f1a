package resolver

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/terrainium/terrainium/internal/terrain"
)

func TestMergeCommutativityOnDisjointKeys(t *testing.T) {
	base := terrain.Biome{Envs: map[string]string{"A": "1"}}
	biome := terrain.Biome{Envs: map[string]string{"B": "2"}}

	merged := base.Merge(biome)

	want := map[string]string{"A": "1", "B": "2"}
	if !reflect.DeepEqual(merged.Envs, want) {
		t.Errorf("Envs = %v, want %v", merged.Envs, want)
	}
}

func TestOverridePrecedence(t *testing.T) {
	base := terrain.Biome{Envs: map[string]string{"K": "base"}}
	biome := terrain.Biome{Envs: map[string]string{"K": "biome"}}

	merged := base.Merge(biome)

	if merged.Envs["K"] != "biome" {
		t.Errorf("Envs[K] = %q, want biome", merged.Envs["K"])
	}
}

func TestSubstitutionFixpointIsNoOp(t *testing.T) {
	envs := map[string]string{"A": "x", "B": "${A}${A}"}
	resolved, _ := substituteEnvs(envs)

	again, results := substituteEnvs(resolved)
	if !reflect.DeepEqual(resolved, again) {
		t.Errorf("again = %v, want %v", again, resolved)
	}
	if len(results.Items()) != 0 {
		t.Errorf("Items() = %v, want empty", results.Items())
	}
}

func TestUnresolvedRefsPreservedWithOneWarn(t *testing.T) {
	envs := map[string]string{"A": "x", "B": "${A}${A}", "C": "${B}-${MISSING}"}
	resolved, results := substituteEnvs(envs)

	if resolved["A"] != "x" {
		t.Errorf("A = %q, want x", resolved["A"])
	}
	if resolved["B"] != "xx" {
		t.Errorf("B = %q, want xx", resolved["B"])
	}
	if resolved["C"] != "xx-${MISSING}" {
		t.Errorf("C = %q, want xx-${MISSING}", resolved["C"])
	}

	warnings := results.Items()
	if len(warnings) != 1 {
		t.Fatalf("len(Items()) = %d, want 1", len(warnings))
	}
	if warnings[0].Level != LevelWarn {
		t.Errorf("Level = %v, want %v", warnings[0].Level, LevelWarn)
	}
	if !strings.Contains(warnings[0].Target, "C") {
		t.Errorf("Target = %q, want substring %q", warnings[0].Target, "C")
	}
}

func TestSubstitutionSelfReferenceTerminates(t *testing.T) {
	envs := map[string]string{"A": "${A}"}

	done := make(chan map[string]string, 1)
	go func() {
		resolved, _ := substituteEnvs(envs)
		done <- resolved
	}()

	select {
	case resolved := <-done:
		if resolved["A"] != "${A}" {
			t.Errorf("A = %q, want ${A}", resolved["A"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("substituteEnvs did not terminate on a self-referential env")
	}
}

func TestSubstitutionMutualCycleTerminates(t *testing.T) {
	envs := map[string]string{"A": "${B}", "B": "${A}"}

	done := make(chan map[string]string, 1)
	go func() {
		resolved, _ := substituteEnvs(envs)
		done <- resolved
	}()

	select {
	case <-done:
		// Terminating at all is the property under test; the exact
		// fixpoint value for a mutual cycle isn't otherwise specified.
	case <-time.After(2 * time.Second):
		t.Fatal("substituteEnvs did not terminate on a mutually referential pair")
	}
}

// TestScenarioS2 matches spec.md §8 S2 literally.
func TestScenarioS2(t *testing.T) {
	envs := map[string]string{"A": "x", "B": "${A}${A}", "C": "${B}-${NONE}"}
	resolved, results := substituteEnvs(envs)

	if resolved["A"] != "x" {
		t.Errorf("A = %q, want x", resolved["A"])
	}
	if resolved["B"] != "xx" {
		t.Errorf("B = %q, want xx", resolved["B"])
	}
	if resolved["C"] != "xx-${NONE}" {
		t.Errorf("C = %q, want xx-${NONE}", resolved["C"])
	}
	if len(results.Items()) != 1 {
		t.Errorf("len(Items()) = %d, want 1", len(results.Items()))
	}
}

// TestScenarioS1 matches spec.md §8 S1: an empty terrain resolves to an
// environment with no envs/aliases/constructors/destructors, biome "none",
// and auto_apply "off".
func TestScenarioS1(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()

	env, results, err := Resolve(tr, terrain.SelectDefault(), dir, "myterrain")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if results.HasErrors() {
		t.Errorf("HasErrors() = true, want false")
	}

	if env.SelectedBiome != terrain.None {
		t.Errorf("SelectedBiome = %q, want %q", env.SelectedBiome, terrain.None)
	}
	if env.AutoApply != terrain.AutoApplyOff {
		t.Errorf("AutoApply = %v, want %v", env.AutoApply, terrain.AutoApplyOff)
	}
	if len(env.Merged.Envs) != 0 {
		t.Errorf("Merged.Envs = %v, want empty", env.Merged.Envs)
	}
	if len(env.Merged.Aliases) != 0 {
		t.Errorf("Merged.Aliases = %v, want empty", env.Merged.Aliases)
	}
	if len(env.Merged.Constructors.Foreground) != 0 {
		t.Errorf("Merged.Constructors.Foreground = %v, want empty", env.Merged.Constructors.Foreground)
	}
	if len(env.Merged.Destructors.Foreground) != 0 {
		t.Errorf("Merged.Destructors.Foreground = %v, want empty", env.Merged.Destructors.Foreground)
	}
}

func TestEmptyExeIsError(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{{Exe: ""}}

	_, results, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
	if !results.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestEmbeddedWhitespaceInExeIsError(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{{Exe: "foo bar"}}

	_, results, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
	if !results.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestLeadingTrailingWhitespaceIsTrimmedWithWarn(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{{Exe: " /bin/echo ", Args: []string{"hi"}}}

	env, results, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if env.Merged.Constructors.Foreground[0].Exe != "/bin/echo" {
		t.Errorf("Exe = %q, want /bin/echo", env.Merged.Constructors.Foreground[0].Exe)
	}

	found := false
	for _, r := range results.Items() {
		if r.Fix == FixTrim {
			found = true
		}
	}
	if !found {
		t.Error("expected a FixTrim result, found none")
	}
}

func TestBareExeMissingOnPathIsWarnForegroundErrorBackground(t *testing.T) {
	dir := t.TempDir()

	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{{Exe: "definitely-not-a-real-binary-xyz"}}
	_, fgResults, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if fgResults.HasErrors() {
		t.Error("HasErrors() = true, want false for a foreground command")
	}

	tr2 := terrain.Empty()
	tr2.Terrain.Constructors.Background = []terrain.Command{{Exe: "definitely-not-a-real-binary-xyz"}}
	_, bgResults, err := Resolve(tr2, terrain.SelectDefault(), dir, "t")
	if err == nil {
		t.Fatal("Resolve() expected error for a background command, got nil")
	}
	if !bgResults.HasErrors() {
		t.Error("HasErrors() = false, want true for a background command")
	}
}

func TestCwdDefaultsToTerrainDir(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{{Exe: "/bin/echo"}}

	env, _, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if env.Merged.Constructors.Foreground[0].Cwd != dir {
		t.Errorf("Cwd = %q, want %q", env.Merged.Constructors.Foreground[0].Cwd, dir)
	}
}

func TestCwdNonExistentWithoutRefsIsError(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{
		{Exe: "/bin/echo", Cwd: filepath.Join(dir, "does-not-exist")},
	}

	_, results, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
	if !results.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestCwdNonExistentWithUnresolvedRefIsInfoOnly(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()
	tr.Terrain.Constructors.Foreground = []terrain.Command{
		{Exe: "/bin/echo", Cwd: "${SOME_MISSING_VAR}/sub"},
	}

	_, results, err := Resolve(tr, terrain.SelectDefault(), dir, "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if results.HasErrors() {
		t.Error("HasErrors() = true, want false")
	}
}

func TestUnknownBiomeIsFatal(t *testing.T) {
	dir := t.TempDir()
	tr := terrain.Empty()

	_, _, err := Resolve(tr, terrain.SelectNamed("ghost"), dir, "t")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
}
