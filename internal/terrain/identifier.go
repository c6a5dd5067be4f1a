// Package terrain holds the typed representation of a terrain: the base
// biome, named biomes, default biome and auto-apply setting parsed from
// terrain.toml.
package terrain

import (
	"fmt"
	"unicode"
)

// None is the reserved biome name that always refers to the base terrain.
const None = "none"

// ValidateIdentifier checks that name matches [A-Za-z_][A-Za-z0-9_]*,
// returning a descriptive error otherwise (e.g. "cannot start with number").
// The client's -e/-a pair parsing returns this error text unchanged.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	first := rune(name[0])
	if unicode.IsDigit(first) {
		return fmt.Errorf("identifier %q cannot start with number", name)
	}
	if !isIdentStart(first) {
		return fmt.Errorf("identifier %q contains invalid character %q", name, string(first))
	}

	for _, r := range name[1:] {
		if !isIdentChar(r) {
			return fmt.Errorf("identifier %q contains invalid character %q", name, string(r))
		}
	}

	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || ('0' <= r && r <= '9')
}
