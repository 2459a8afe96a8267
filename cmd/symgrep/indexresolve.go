package main

import (
	"path/filepath"
	"strings"

	"github.com/termfx/symgrep/internal/core"
)

const defaultFileIndexPath = ".symgrep"
const defaultSQLiteIndexPath = ".symgrep/index.sqlite"

// resolveBackend mirrors the original CLI's backend inference: an explicit
// --index-backend always wins; absent that, a --index-path ending in
// ".sqlite" (case-insensitive) infers the SQLite backend; absent both, the
// file backend with its default path is used.
func resolveBackend(backendFlag string, backendSet bool, indexPathFlag string, indexPathSet bool) (core.IndexBackendKind, string) {
	if backendSet {
		backend := core.IndexBackendFile
		if strings.EqualFold(backendFlag, "sqlite") {
			backend = core.IndexBackendSQLite
		}
		path := indexPathFlag
		if !indexPathSet {
			path = defaultIndexPathFor(backend)
		}
		return backend, path
	}

	if indexPathSet {
		if strings.EqualFold(filepath.Ext(indexPathFlag), ".sqlite") {
			return core.IndexBackendSQLite, indexPathFlag
		}
		return core.IndexBackendFile, indexPathFlag
	}

	return core.IndexBackendFile, defaultFileIndexPath
}

func defaultIndexPathFor(backend core.IndexBackendKind) string {
	if backend == core.IndexBackendSQLite {
		return defaultSQLiteIndexPath
	}
	return defaultFileIndexPath
}
