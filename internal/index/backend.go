// Package index implements the pluggable on-disk index: a JSONL file
// backend and a SQLite backend sharing the same logical model, plus the
// incremental build driver the search engine and CLI call into.
package index

import (
	"github.com/termfx/symgrep/internal/core"
)

// Backend is the pluggable index storage interface used by the search
// engine and CLI without depending on a concrete implementation.
type Backend interface {
	Kind() core.IndexBackendKind
	IndexPath() string

	LoadMeta() (core.IndexMeta, error)
	SaveMeta(meta core.IndexMeta) error

	ListFiles() ([]core.FileRecord, error)
	GetFileByPath(path string) (*core.FileRecord, error)
	GetFileByID(id int64) (*core.FileRecord, error)
	UpsertFile(path, language, hash string, mtime int64, size int64) (core.FileRecord, error)
	RemoveFileByPath(path string) error

	SetFileSymbols(fileID int64, symbols []core.NewSymbolRecord) error
	QuerySymbols(q core.SymbolQuery) ([]core.SymbolRecord, error)

	Close() error
}

// Open constructs the backend named by cfg.Backend.
func Open(cfg core.IndexConfig) (Backend, error) {
	switch cfg.Backend {
	case core.IndexBackendSQLite:
		return OpenSQLite(cfg.IndexPath)
	default:
		return OpenFile(cfg.IndexPath)
	}
}
