// Package provider defines the Language Backend Layer contract: parsing
// source into an opaque tree, extracting symbols/comments/parent
// chains/call edges, and materializing context snippets.
package provider

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/symgrep/internal/core"
)

// ParsedFile is the opaque parsed-source handle callers pass back into
// IndexSymbols/ContextSnippet. It is never cached across requests.
type ParsedFile struct {
	Language string
	Path     string
	Tree     *sitter.Tree
	Source   []byte
}

// RootHasErrors reports whether the parse tree contains any ERROR nodes,
// used to reject unparsable sources.
func (p *ParsedFile) RootHasErrors() bool {
	if p.Tree == nil {
		return true
	}
	return nodeHasError(p.Tree.RootNode())
}

func nodeHasError(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	if n.IsError() || n.IsMissing() {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if nodeHasError(n.Child(i)) {
			return true
		}
	}
	return false
}

// LanguageProvider is a single language's binding to a tree-sitter grammar
// plus extraction logic. Implementations register once into a
// process-global, immutable-after-init table (see internal/lang).
type LanguageProvider interface {
	// Lang returns the stable canonical language id, e.g. "typescript".
	Lang() string
	// Aliases returns every name (including Lang()) this provider resolves
	// under, e.g. ["go", "golang"].
	Aliases() []string
	// Extensions returns file extensions (with leading dot) this provider
	// claims, e.g. [".go"].
	Extensions() []string
	// GetSitterLanguage returns the tree-sitter grammar.
	GetSitterLanguage() *sitter.Language

	// Parse parses source into an opaque ParsedFile. Implementations
	// reject trees containing parse errors with a core.ErrKindParse error.
	Parse(path string, source []byte) (*ParsedFile, error)
	// IndexSymbols walks the parsed tree and returns every recognized
	// symbol, in tree-traversal order, including its intra-file call
	// edges.
	IndexSymbols(file *ParsedFile) ([]core.Symbol, error)
	// ContextSnippet materializes a ContextInfo of the requested kind for
	// symbol, whose Range must have come from this same ParsedFile.
	ContextSnippet(file *ParsedFile, symbol core.Symbol, kind core.ContextKind) (core.ContextInfo, error)
}
