package events

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ExpandGlobs expands file paths and glob patterns into a sorted,
// deduplicated list. A glob that matches nothing contributes nothing, since
// a day without recordings is normal. A literal path is always kept so that
// a missing file surfaces as an error when it is opened.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			add(pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			add(match)
		}
	}

	slices.Sort(result)
	return result, nil
}
