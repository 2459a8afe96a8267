package core

import "github.com/sirupsen/logrus"

// ToolVersion is stamped into index metadata.
const ToolVersion = "0.1.0"

// IndexBackendKind selects a persistent symbol store implementation.
type IndexBackendKind string

const (
	IndexBackendFile   IndexBackendKind = "file"
	IndexBackendSQLite IndexBackendKind = "sqlite"
)

// SchemaVersionFor returns the current on-disk schema version string for a
// backend kind: "1" for the file backend, "2" for SQLite.
func SchemaVersionFor(kind IndexBackendKind) string {
	if kind == IndexBackendSQLite {
		return "2"
	}
	return "1"
}

// IndexConfig is the fully resolved input to an index/index-info operation.
type IndexConfig struct {
	Paths        []string         `json:"paths"`
	Globs        []string         `json:"globs,omitempty"`
	ExcludeGlobs []string         `json:"exclude_globs,omitempty"`
	Language     string           `json:"language,omitempty"`
	Backend      IndexBackendKind `json:"backend"`
	IndexPath    string           `json:"index_path"`

	// Logger receives per-file skip warnings. Nil discards.
	Logger *logrus.Logger `json:"-"`
}

// IndexMeta is the on-disk header record for an index.
type IndexMeta struct {
	ID            string `json:"id,omitempty"`
	SchemaVersion string `json:"schema_version"`
	ToolVersion   string `json:"tool_version"`
	RootPath      string `json:"root_path"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// FileRecord is one indexed file's persisted metadata.
type FileRecord struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Language string `json:"language"`
	Hash     string `json:"hash,omitempty"`
	Mtime    int64  `json:"mtime"`
	Size     int64  `json:"size"`
}

// SymbolRecord is one indexed symbol's persisted metadata, including the
// opaque Extra payload used to carry SymbolAttributes.Keywords/Description
// across reindex passes.
type SymbolRecord struct {
	ID       int64      `json:"id"`
	FileID   int64      `json:"file_id"`
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Language string     `json:"language"`
	Range    TextRange  `json:"range"`
	Signature string    `json:"signature,omitempty"`
	Extra    string     `json:"extra,omitempty"`
}

// NewSymbolRecord is the payload used to insert a symbol for a known file.
type NewSymbolRecord struct {
	FileID    int64
	Name      string
	Kind      SymbolKind
	Language  string
	Range     TextRange
	Signature string
	Extra     string
}

// SymbolQuery filters SymbolRecords returned by an index backend.
type SymbolQuery struct {
	NameSubstring string
	Language      string
	Paths         []string
	Globs         []string
	ExcludeGlobs  []string
}

// IndexSummary is returned by both the index and index-info operations.
type IndexSummary struct {
	Backend        IndexBackendKind `json:"backend"`
	IndexPath      string           `json:"index_path"`
	FilesIndexed   uint64           `json:"files_indexed"`
	SymbolsIndexed uint64           `json:"symbols_indexed"`
	RootPath       string           `json:"root_path,omitempty"`
	SchemaVersion  string           `json:"schema_version,omitempty"`
	ToolVersion    string           `json:"tool_version,omitempty"`
	CreatedAt      string           `json:"created_at,omitempty"`
	UpdatedAt      string           `json:"updated_at,omitempty"`
	IndexID        string           `json:"index_id,omitempty"`
}

// SymbolSelector identifies a symbol across reindexing passes for
// attribute preservation: (file, name, kind, language, start_line,
// end_line) matched within +/-1 line of drift.
type SymbolSelector struct {
	File      string     `json:"file"`
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Language  string     `json:"language"`
	StartLine uint32     `json:"start_line"`
	EndLine   uint32     `json:"end_line"`
}

// Matches reports whether r identifies the same logical symbol as the
// receiver within one line of drift on each boundary.
func (s SymbolSelector) Matches(r SymbolSelector) bool {
	if s.File != r.File || s.Name != r.Name || s.Kind != r.Kind || s.Language != r.Language {
		return false
	}
	return withinOne(s.StartLine, r.StartLine) && withinOne(s.EndLine, r.EndLine)
}

func withinOne(a, b uint32) bool {
	if a > b {
		return a-b <= 1
	}
	return b-a <= 1
}

// SymbolAttributesUpdate is the mutable part of a SymbolAttributes write.
type SymbolAttributesUpdate struct {
	Keywords    []string `json:"keywords,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SymbolAttributesRequest targets a symbol by selector and supplies an
// update to persist.
type SymbolAttributesRequest struct {
	Index    IndexConfig            `json:"index"`
	Selector SymbolSelector         `json:"selector"`
	Update   SymbolAttributesUpdate `json:"update"`
}

// SymbolAttributesResponse echoes the updated symbol, including its
// effective attributes, after a write.
type SymbolAttributesResponse struct {
	Symbol Symbol `json:"symbol"`
}
