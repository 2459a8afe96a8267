package provider

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/termfx/symgrep/internal/core"
)

// SymbolRule maps one tree-sitter node type to a Symbol.
type SymbolRule struct {
	NodeType string
	Kind     core.SymbolKind
	// NameField is the tree-sitter field name carrying the identifier, if
	// any (checked first).
	NameField string
	// NameNodeTypes are named-child node types to fall back to when
	// NameField is absent or unset on this node.
	NameNodeTypes []string
	// MethodWhenNestedIn promotes Kind to Method when an ancestor node's
	// type is one of these (e.g. a class/struct/impl body).
	MethodWhenNestedIn []string
}

// ScopeRule recognizes an enclosing construct for parent-chain
// construction.
type ScopeRule struct {
	NodeType      string
	Kind          core.SymbolKind
	NameField     string
	NameNodeTypes []string
}

// CallRule identifies call expressions for intra-file call-graph
// extraction.
type CallRule struct {
	NodeType      string
	FunctionField string
	// MemberFields are tried in order against the function-field node when
	// it isn't a bare identifier (e.g. a member/selector expression).
	MemberFields []string
}

// Config parameterizes GenericProvider for one concrete language.
type Config struct {
	LangID      string
	AliasList   []string
	ExtList     []string
	SitterLang  func() *sitter.Language
	Symbols     []SymbolRule
	Scopes      []ScopeRule
	Call        CallRule
	BodyField   string // field name holding a block body, for Decl snippets
	IsDecorator func(line string) bool
}

// GenericProvider implements provider.LanguageProvider by table-driven
// tree walks, shared across languages whose tree-sitter grammars expose
// similar declaration/member/call shapes (TypeScript, JavaScript, Python).
// Go and C++ have enough grammar idiosyncrasy to warrant their own
// implementations instead.
type GenericProvider struct {
	cfg Config
}

// NewGeneric builds a LanguageProvider from cfg.
func NewGeneric(cfg Config) LanguageProvider { return GenericProvider{cfg: cfg} }

func (g GenericProvider) Lang() string                  { return g.cfg.LangID }
func (g GenericProvider) Aliases() []string              { return g.cfg.AliasList }
func (g GenericProvider) Extensions() []string           { return g.cfg.ExtList }
func (g GenericProvider) GetSitterLanguage() *sitter.Language { return g.cfg.SitterLang() }

func (g GenericProvider) Parse(path string, source []byte) (*ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(g.GetSitterLanguage())
	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil {
		return nil, core.ParseErr("parse "+g.cfg.LangID+" source: "+path, err)
	}
	pf := &ParsedFile{Language: g.cfg.LangID, Path: path, Tree: tree, Source: source}
	if pf.RootHasErrors() {
		return nil, core.ParseErr("syntax errors in "+path, nil)
	}
	return pf, nil
}

func nodeName(n *sitter.Node, source []byte, field string, fallbackTypes []string) string {
	if field != "" {
		if nameNode := n.ChildByFieldName(field); nameNode != nil {
			return nameNode.Content(source)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range fallbackTypes {
			if child.Type() == t {
				return child.Content(source)
			}
		}
	}
	return ""
}

func ancestorTypeIn(n *sitter.Node, types []string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
	}
	return false
}

func (g GenericProvider) IndexSymbols(file *ParsedFile) ([]core.Symbol, error) {
	root := file.Tree.RootNode()
	var symbols []core.Symbol

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for _, rule := range g.cfg.Symbols {
			if n.Type() != rule.NodeType {
				continue
			}
			name := nodeName(n, file.Source, rule.NameField, rule.NameNodeTypes)
			if name == "" {
				break
			}
			kind := rule.Kind
			if len(rule.MethodWhenNestedIn) > 0 && ancestorTypeIn(n, rule.MethodWhenNestedIn) {
				kind = core.KindMethod
			}
			sym := core.Symbol{
				Name:     name,
				Kind:     kind,
				Language: g.cfg.LangID,
				File:     file.Path,
				Range:    NodeRange(n),
			}
			sym.Attributes = g.leadingComment(n, file)
			symbols = append(symbols, sym)
			break
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	g.attachCallGraph(root, file, symbols)
	return symbols, nil
}

func (g GenericProvider) leadingComment(n *sitter.Node, file *ParsedFile) *core.SymbolAttributes {
	text, rng, ok := CollectLeadingComment(file.Source, n.StartPoint().Row+1, g.cfg.IsDecorator)
	if !ok {
		return nil
	}
	return &core.SymbolAttributes{Comment: text, CommentRange: rng}
}

func (g GenericProvider) calleeName(n *sitter.Node, source []byte) string {
	if g.cfg.Call.NodeType == "" {
		return ""
	}
	fn := n.ChildByFieldName(g.cfg.Call.FunctionField)
	if fn == nil {
		return ""
	}
	if fn.NamedChildCount() == 0 {
		return fn.Content(source)
	}
	for _, field := range g.cfg.Call.MemberFields {
		if m := fn.ChildByFieldName(field); m != nil {
			return m.Content(source)
		}
	}
	return fn.Content(source)
}

func (g GenericProvider) attachCallGraph(root *sitter.Node, file *ParsedFile, symbols []core.Symbol) {
	if g.cfg.Call.NodeType == "" {
		return
	}
	isCallable := func(k core.SymbolKind) bool { return k == core.KindFunction || k == core.KindMethod }

	enclosing := func(line uint32) int {
		best := -1
		var bestSpan uint32
		for i, s := range symbols {
			if !isCallable(s.Kind) || line < s.Range.StartLine || line > s.Range.EndLine {
				continue
			}
			span := s.Range.EndLine - s.Range.StartLine
			if best == -1 || span < bestSpan {
				best, bestSpan = i, span
			}
		}
		return best
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == g.cfg.Call.NodeType {
			if callee := g.calleeName(n, file.Source); callee != "" {
				line := n.StartPoint().Row + 1
				if callerIdx := enclosing(line); callerIdx != -1 {
					l := line
					ref := core.CallRef{Name: callee, File: file.Path, Line: &l}
					for j := range symbols {
						if symbols[j].Name == callee && isCallable(symbols[j].Kind) {
							k := symbols[j].Kind
							ref.Kind = &k
							break
						}
					}
					symbols[callerIdx].Calls = append(symbols[callerIdx].Calls, ref)
					callerKind := symbols[callerIdx].Kind
					for j := range symbols {
						if symbols[j].Name == callee && isCallable(symbols[j].Kind) {
							defLine := symbols[j].Range.StartLine
							symbols[j].CalledBy = append(symbols[j].CalledBy, core.CallRef{
								Name: symbols[callerIdx].Name, File: file.Path, Line: &defLine, Kind: &callerKind,
							})
						}
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (g GenericProvider) ContextSnippet(file *ParsedFile, symbol core.Symbol, kind core.ContextKind) (core.ContextInfo, error) {
	info := BasicContextSnippet(file.Source, symbol.File, symbol.Range, kind)
	if kind == core.ContextDecl && g.cfg.BodyField != "" {
		info.Range = g.declRange(file, symbol)
	}
	info.ParentChain = g.parentChain(file, symbol)
	return info, nil
}

func (g GenericProvider) declRange(file *ParsedFile, symbol core.Symbol) core.TextRange {
	root := file.Tree.RootNode()
	start, end := RangeToPoints(symbol.Range)
	n := root.NamedDescendantForPointRange(start, end)
	if n == nil {
		return symbol.Range
	}
	body := n.ChildByFieldName(g.cfg.BodyField)
	if body == nil {
		return BasicContextSnippet(file.Source, symbol.File, symbol.Range, core.ContextDecl).Range
	}
	bodyStart := body.StartPoint().Row + 1
	if bodyStart <= symbol.Range.StartLine {
		return BasicContextSnippet(file.Source, symbol.File, symbol.Range, core.ContextDecl).Range
	}
	lines := strings.Split(strings.TrimRight(string(file.Source), "\n"), "\n")
	endLine := bodyStart - 1
	endCol := uint32(1)
	if endLine >= 1 && int(endLine)-1 < len(lines) {
		endCol = uint32(len(lines[endLine-1])) + 1
	}
	return core.TextRange{StartLine: symbol.Range.StartLine, StartColumn: 1, EndLine: endLine, EndColumn: endCol}
}

func (g GenericProvider) parentChain(file *ParsedFile, symbol core.Symbol) []core.ContextNode {
	chain := []core.ContextNode{FileContextNode(file.Path)}
	if len(g.cfg.Scopes) == 0 {
		return chain
	}
	root := file.Tree.RootNode()
	start, end := RangeToPoints(symbol.Range)
	n := root.NamedDescendantForPointRange(start, end)
	if n == nil {
		return chain
	}
	var ancestors []core.ContextNode
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, scope := range g.cfg.Scopes {
			if p.Type() != scope.NodeType {
				continue
			}
			name := nodeName(p, file.Source, scope.NameField, scope.NameNodeTypes)
			if name == "" {
				continue
			}
			kind := scope.Kind
			ancestors = append(ancestors, core.ContextNode{Name: name, Kind: &kind})
		}
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return append(chain, ancestors...)
}
