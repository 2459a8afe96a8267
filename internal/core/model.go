// Package core defines the data model shared by every other symgrep
// package: symbols, text ranges, context snippets, query expressions and
// the request/response envelopes used by the search, index and follow
// operations.
package core

// SymbolKind enumerates the canonical symbol categories a language backend
// may report. A function nested inside a class/struct/impl/trait form is
// classified Method rather than Function.
type SymbolKind string

const (
	KindFunction  SymbolKind = "Function"
	KindMethod    SymbolKind = "Method"
	KindClass     SymbolKind = "Class"
	KindInterface SymbolKind = "Interface"
	KindVariable  SymbolKind = "Variable"
	KindNamespace SymbolKind = "Namespace"
)

// TextRange is a half-open range: 1-based inclusive start line/column and
// 1-based inclusive end line, exclusive end column. StartLine <= EndLine
// lexicographically.
type TextRange struct {
	StartLine   uint32 `json:"start_line"`
	StartColumn uint32 `json:"start_column"`
	EndLine     uint32 `json:"end_line"`
	EndColumn   uint32 `json:"end_column"`
}

// CallRef names a call-graph edge. Resolution is name-based and per-file;
// Line is the call site for outgoing edges, typically the callee's
// declaration line for incoming edges.
type CallRef struct {
	Name string      `json:"name"`
	File string      `json:"file"`
	Line *uint32     `json:"line,omitempty"`
	Kind *SymbolKind `json:"kind,omitempty"`
}

// SymbolAttributes carries the leading comment (re-extracted from source on
// every index pass, never persisted) and the externally managed keyword set
// and description (persisted through SymbolRecord.Extra and rehydrated on
// read).
type SymbolAttributes struct {
	Comment         string    `json:"comment,omitempty"`
	CommentRange    TextRange `json:"comment_range,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// SymbolMatch anchors a DSL term's match inside a materialized context
// snippet or, for comment/description terms, at the symbol's start line.
type SymbolMatch struct {
	Line    uint32  `json:"line"`
	Column  *uint32 `json:"column,omitempty"`
	Snippet string  `json:"snippet"`
}

// Symbol is a single discovered language-level entity.
type Symbol struct {
	Name          string            `json:"name"`
	Kind          SymbolKind        `json:"kind"`
	Language      string            `json:"language"`
	File          string            `json:"file"`
	Range         TextRange         `json:"range"`
	Signature     string            `json:"signature,omitempty"`
	Attributes    *SymbolAttributes `json:"attributes,omitempty"`
	DefLineCount  *uint32           `json:"def_line_count,omitempty"`
	Matches       []SymbolMatch     `json:"matches,omitempty"`
	Calls         []CallRef         `json:"calls,omitempty"`
	CalledBy      []CallRef         `json:"called_by,omitempty"`
}

// ContextNode is one link of a parent chain. The outermost node is the file
// itself with Kind == nil; interior nodes carry the enclosing construct's
// kind.
type ContextNode struct {
	Name string      `json:"name"`
	Kind *SymbolKind `json:"kind,omitempty"`
}

// ContextKind selects which snippet shape was materialized for a symbol.
type ContextKind string

const (
	ContextDecl   ContextKind = "Decl"
	ContextDef    ContextKind = "Def"
	ContextParent ContextKind = "Parent"
)

// ContextInfo is a materialized source snippet tied back to a Symbol by
// index, keeping the result tree-shaped at the JSON boundary.
type ContextInfo struct {
	Kind         ContextKind   `json:"kind"`
	File         string        `json:"file"`
	Range        TextRange     `json:"range"`
	Snippet      string        `json:"snippet,omitempty"`
	SymbolIndex  *int          `json:"symbol_index,omitempty"`
	ParentChain  []ContextNode `json:"parent_chain,omitempty"`
}
