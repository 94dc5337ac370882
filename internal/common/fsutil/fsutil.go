package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/generations
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// segmentReplacer maps characters that would split or escape a single path
// element to underscores.
var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// SafeSegment turns arbitrary text into a single path element. The result
// never contains a separator and is never "." or "..".
func SafeSegment(s string) string {
	out := segmentReplacer.Replace(s)
	switch out {
	case "", ".", "..":
		return strings.Repeat("_", len(out)+1)
	}
	return out
}
