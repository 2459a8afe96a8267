package index

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/termfx/symgrep/internal/core"
)

// matchesPathFilter applies a SymbolQuery's path-root/glob/exclude-glob
// filters to a single indexed file path, in-memory (the backends persist
// no path-prefix indexes of their own).
func matchesPathFilter(path string, q core.SymbolQuery) bool {
	if len(q.Paths) > 0 {
		under := false
		for _, root := range q.Paths {
			if pathUnder(path, root) {
				under = true
				break
			}
		}
		if !under {
			return false
		}
	}

	slash := filepath.ToSlash(path)
	if len(q.Globs) > 0 {
		matched := false
		for _, pattern := range q.Globs {
			if ok, _ := doublestar.Match(pattern, slash); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range q.ExcludeGlobs {
		if ok, _ := doublestar.Match(pattern, slash); ok {
			return false
		}
	}
	return true
}

func pathUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
