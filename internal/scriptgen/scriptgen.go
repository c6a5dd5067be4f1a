// Package scriptgen renders a resolved Environment into a compiled zsh
// activation script and maintains the fixed shell-integration script, the
// ScriptGen component of spec.md §4.2. It is grounded on the teacher's
// internal/render.NativeRenderer (text/template + sprout function
// registries) generalized from "render one templated secret file" to
// "render four composed script fragments into one main script per biome",
// and on the original implementation's Zsh::create_and_compile /
// Zsh::setup_integration (original_source/src/common/shell/zsh.rs,
// original_source/src/client/shell/zsh.rs) for the script lifecycle rules.
package scriptgen

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"

	"github.com/terrainium/terrainium/internal/resolver"
	"github.com/terrainium/terrainium/internal/terrain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const compileTimeout = 10 * time.Second

// scriptData is the values bound into main.tmpl and its sub-templates.
type scriptData struct {
	BiomeName    string
	Envs         map[string]string
	Aliases      map[string]string
	Constructors []terrain.Command
	Destructors  []terrain.Command
}

func buildFuncMap() template.FuncMap {
	handler := sprout.New()
	_ = handler.AddRegistries(std.NewRegistry(), sproutstrings.NewRegistry())
	funcMap := handler.Build()
	funcMap["shellQuote"] = shellescape.Quote
	return funcMap
}

func parseTemplates() (*template.Template, error) {
	tmpl := template.New("main.tmpl").Funcs(buildFuncMap())
	tmpl, err := tmpl.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing scriptgen templates: %w", err)
	}
	// main.tmpl references sub-templates by their bare name ("envs",
	// "aliases", ...); ParseFS registers them under their filename, so
	// alias each one under its bare name too.
	for _, name := range []string{"envs", "aliases", "constructors", "destructors"} {
		if t := tmpl.Lookup(name + ".tmpl"); t != nil {
			if _, err := tmpl.New(name).Parse(t.Tree.Root.String()); err != nil {
				return nil, fmt.Errorf("aliasing template %q: %w", name, err)
			}
		}
	}
	return tmpl, nil
}

// RenderScript renders the activation script text for one resolved
// environment (a biome name plus its merged envs/aliases/commands).
// Only foreground commands run inline in the compiled script; background
// commands are dispatched to the daemon via Execute instead.
func RenderScript(env *resolver.Environment) ([]byte, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	data := scriptData{
		BiomeName:    env.SelectedBiome,
		Envs:         env.Merged.Envs,
		Aliases:      env.Merged.Aliases,
		Constructors: env.Merged.Constructors.Foreground,
		Destructors:  env.Merged.Destructors.Foreground,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "main.tmpl", data); err != nil {
		return nil, fmt.Errorf("executing main script template: %w", err)
	}
	return buf.Bytes(), nil
}

// ScriptPaths returns the (source, compiled) paths for a biome's script
// under the given scripts directory, per spec.md §4.2's naming rule.
func ScriptPaths(scriptsDir, biomeName string) (script, compiled string) {
	script = filepath.Join(scriptsDir, fmt.Sprintf("terrain-%s.zsh", biomeName))
	compiled = filepath.Join(scriptsDir, fmt.Sprintf("terrain-%s.zwc", biomeName))
	return
}

// WriteAndCompile writes the rendered script to its fixed path under
// scriptsDir and compiles it with zsh's own bytecode compiler
// (`zcompile`), surfacing the shell's stderr verbatim on failure.
func WriteAndCompile(ctx context.Context, scriptsDir, biomeName string, script []byte) error {
	if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
		return fmt.Errorf("creating scripts directory: %w", err)
	}

	scriptPath, compiledPath := ScriptPaths(scriptsDir, biomeName)
	if err := os.WriteFile(scriptPath, script, 0o644); err != nil {
		return fmt.Errorf("writing script %q: %w", scriptPath, err)
	}

	return compileScript(ctx, scriptPath, compiledPath)
}

// compileScript is a package variable so tests can stub out the zsh
// dependency without requiring zsh to be installed in the test environment.
var compileScript = realCompileScript

func realCompileScript(ctx context.Context, scriptPath, compiledPath string) error {
	cctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "zsh", "-c",
		fmt.Sprintf("zcompile -URz %s %s", shellescape.Quote(compiledPath), shellescape.Quote(scriptPath)))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compiling script %q: %w (stderr: %s)", scriptPath, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
