package statestore

import (
	"fmt"
	"os"
	"strings"
)

// DefaultHistorySize is N in spec.md §3's "bounded ordered list of the N
// most recent session ids (default N=5)".
const DefaultHistorySize = 5

// ReadHistory loads the newline-separated, newest-first session id list
// for a terrain. A missing file is treated as an empty history.
func ReadHistory(root, terrainName string) ([]string, error) {
	data, err := os.ReadFile(HistoryPath(root, terrainName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// PushHistory inserts sessionID at the front of the terrain's history,
// unless it already equals the current front entry (idempotent front,
// spec.md §8 invariant 8), and truncates to maxSize, silently evicting
// the tail (spec.md §3).
func PushHistory(root, terrainName, sessionID string, maxSize int) error {
	existing, err := ReadHistory(root, terrainName)
	if err != nil {
		return err
	}

	if len(existing) > 0 && existing[0] == sessionID {
		return nil
	}

	updated := append([]string{sessionID}, existing...)
	if maxSize > 0 && len(updated) > maxSize {
		updated = updated[:maxSize]
	}

	data := strings.Join(updated, "\n") + "\n"
	return atomicWriteFile(HistoryPath(root, terrainName), []byte(data), 0o644)
}

// SessionIDAtIndex returns the session id at the given --recent index
// (0 = most recent), or an error matching S4's literal message when the
// index is out of range.
func SessionIDAtIndex(root, terrainName string, index int) (string, error) {
	history, err := ReadHistory(root, terrainName)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(history) {
		return "", fmt.Errorf("failed to get the session id from the history")
	}
	return history[index], nil
}
