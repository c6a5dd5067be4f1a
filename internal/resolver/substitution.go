package resolver

import (
	"fmt"
	"maps"
	"os"
	"regexp"
)

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnvs resolves ${NAME} references inside env values iteratively:
// each pass replaces every reference whose target is currently defined
// (in the merged map or the process environment), and the pass repeats
// until no substitution occurs. References left unresolved at fixpoint
// are reported as a WARN on their owning key and kept verbatim in the
// output, satisfying spec.md §4.1's "unresolved refs are preserved
// verbatim" invariant.
func substituteEnvs(envs map[string]string) (map[string]string, Results) {
	var results Results

	resolved := make(map[string]string, len(envs))
	maps.Copy(resolved, envs)

	for {
		changed := false
		next := make(map[string]string, len(resolved))

		for key, val := range resolved {
			newVal := refPattern.ReplaceAllStringFunc(val, func(match string) string {
				name := refPattern.FindStringSubmatch(match)[1]
				if v, ok := lookupRef(name, resolved); ok {
					return v
				}
				return match
			})
			if newVal != val {
				changed = true
			}
			next[key] = newVal
		}

		resolved = next
		if !changed {
			break
		}
	}

	// Report unresolved references, one WARN per owning variable.
	for key, val := range resolved {
		for _, m := range refPattern.FindAllStringSubmatch(val, -1) {
			name := m[1]
			if _, ok := lookupRef(name, resolved); !ok {
				results.Add(LevelWarn, fmt.Sprintf("envs(%s)", key),
					fmt.Sprintf("could not resolve reference to %q in value of %q, leaving as-is", name, key))
			}
		}
	}

	return resolved, results
}

func lookupRef(name string, merged map[string]string) (string, bool) {
	if v, ok := merged[name]; ok {
		return v, true
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return "", false
}

// substituteString expands ${NAME} references against the merged env map
// and the process environment, leaving unresolved references verbatim.
// Unlike substituteEnvs this is a single pass, used for cwd expansion
// where the merged env map is already fully resolved.
func substituteString(s string, merged map[string]string) (result string, unresolved []string) {
	result = refPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := refPattern.FindStringSubmatch(match)[1]
		if v, ok := lookupRef(name, merged); ok {
			return v
		}
		unresolved = append(unresolved, name)
		return match
	})
	return result, unresolved
}
