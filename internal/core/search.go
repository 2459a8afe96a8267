package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

// SearchMode selects between plain text scanning and language-aware symbol
// extraction. Auto resolves to Symbol iff a known language was specified,
// else Text.
type SearchMode string

const (
	ModeText   SearchMode = "text"
	ModeSymbol SearchMode = "symbol"
	ModeAuto   SearchMode = "auto"
)

// SymbolView names one requested projection of a symbol in a result.
type SymbolView string

const (
	ViewMeta    SymbolView = "meta"
	ViewDecl    SymbolView = "decl"
	ViewDef     SymbolView = "def"
	ViewParent  SymbolView = "parent"
	ViewComment SymbolView = "comment"
	ViewMatches SymbolView = "matches"
)

// SearchResultSchemaVersion is the current SearchResult envelope version.
const SearchResultSchemaVersion = "1.2.0"

// SearchConfig is the fully resolved input to a search operation.
type SearchConfig struct {
	Pattern        string       `json:"pattern"`
	Paths          []string     `json:"paths"`
	Globs          []string     `json:"globs,omitempty"`
	ExcludeGlobs   []string     `json:"exclude_globs,omitempty"`
	Language       string       `json:"language,omitempty"`
	Mode           SearchMode   `json:"mode,omitempty"`
	Literal        bool         `json:"literal,omitempty"`
	Views          []SymbolView `json:"views,omitempty"`
	Limit          *uint64      `json:"limit,omitempty"`
	MaxLines       *uint64      `json:"max_lines,omitempty"`
	ReindexOnSearch bool        `json:"reindex_on_search,omitempty"`
	UseIndex       bool         `json:"use_index,omitempty"`
	Index          *IndexConfig `json:"index,omitempty"`

	// ParsedQuery caches a pre-parsed QueryExpr so callers (e.g. follow)
	// that already tokenized Pattern need not re-parse it.
	ParsedQuery *QueryExpr `json:"-"`

	// Logger receives per-file skip warnings for I/O and parse failures; the
	// file is skipped and the operation continues. Nil discards.
	Logger *logrus.Logger `json:"-"`
}

// EffectiveLogger returns l, or a logger discarding all output when l is
// nil, so callers never need a nil check before logging.
func EffectiveLogger(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}

// SearchMatch is one text-mode hit.
type SearchMatch struct {
	File    string  `json:"file"`
	Line    uint32  `json:"line"`
	Column  uint32  `json:"column"`
	Snippet string  `json:"snippet,omitempty"`
}

// SearchSummary reports aggregate counts for a search.
type SearchSummary struct {
	TotalMatches uint64 `json:"total_matches"`
	Truncated    bool   `json:"truncated"`
}

// SearchResult is the schema-versioned envelope returned by a search.
type SearchResult struct {
	Version  string        `json:"version"`
	Query    string        `json:"query"`
	Matches  []SearchMatch `json:"matches"`
	Symbols  []Symbol      `json:"symbols"`
	Contexts []ContextInfo `json:"contexts"`
	Summary  SearchSummary `json:"summary"`
}
