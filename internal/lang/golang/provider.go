// Package golang implements the Go language backend: tree-sitter parsing,
// symbol/comment/call-graph extraction, and context snippet
// materialization for ".go" sources.
package golang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	gositter "github.com/smacker/go-tree-sitter/golang"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

// Provider implements provider.LanguageProvider for Go.
type Provider struct{}

// New returns a Go language backend.
func New() provider.LanguageProvider { return Provider{} }

func (Provider) Lang() string               { return "go" }
func (Provider) Aliases() []string          { return []string{"go", "golang"} }
func (Provider) Extensions() []string       { return []string{".go"} }
func (Provider) GetSitterLanguage() *sitter.Language { return gositter.GetLanguage() }

func (p Provider) Parse(path string, source []byte) (*provider.ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.GetSitterLanguage())
	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil {
		return nil, core.ParseErr("parse go source: "+path, err)
	}
	pf := &provider.ParsedFile{Language: p.Lang(), Path: path, Tree: tree, Source: source}
	if pf.RootHasErrors() {
		return nil, core.ParseErr("syntax errors in "+path, nil)
	}
	return pf, nil
}

func (p Provider) IndexSymbols(file *provider.ParsedFile) ([]core.Symbol, error) {
	root := file.Tree.RootNode()
	var symbols []core.Symbol

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration":
			symbols = append(symbols, p.buildFunction(n, file, core.KindFunction, ""))
		case "method_declaration":
			recv := p.receiverTypeName(n, file.Source)
			symbols = append(symbols, p.buildFunction(n, file, core.KindMethod, recv))
		case "type_declaration":
			symbols = append(symbols, p.buildTypeDecls(n, file)...)
		case "var_declaration":
			if n.Parent() != nil && n.Parent().Type() == "source_file" {
				symbols = append(symbols, p.buildVarDecls(n, file)...)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	p.attachCallGraph(root, file, symbols)
	return symbols, nil
}

func (p Provider) buildFunction(n *sitter.Node, file *provider.ParsedFile, kind core.SymbolKind, parent string) core.Symbol {
	var name string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(file.Source)
	}
	sym := core.Symbol{
		Name:     name,
		Kind:     kind,
		Language: p.Lang(),
		File:     file.Path,
		Range:    provider.NodeRange(n),
	}
	if parent != "" {
		sym.Signature = "(" + parent + ") " + name
	}
	sym.Attributes = p.leadingComment(n, file)
	return sym
}

func (p Provider) receiverTypeName(n *sitter.Node, source []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	// parameter_list -> parameter_declaration -> type (possibly pointer_type)
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		t := child.ChildByFieldName("type")
		if t == nil {
			continue
		}
		if t.Type() == "pointer_type" {
			if named := t.NamedChild(0); named != nil {
				return named.Content(source)
			}
		}
		return t.Content(source)
	}
	return ""
}

func (p Provider) buildTypeDecls(n *sitter.Node, file *provider.ParsedFile) []core.Symbol {
	var out []core.Symbol
	for i := 0; i < int(n.ChildCount()); i++ {
		spec := n.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		kind := core.KindClass
		if t := spec.ChildByFieldName("type"); t != nil && t.Type() == "interface_type" {
			kind = core.KindInterface
		}
		sym := core.Symbol{
			Name:     nameNode.Content(file.Source),
			Kind:     kind,
			Language: p.Lang(),
			File:     file.Path,
			Range:    provider.NodeRange(n),
		}
		sym.Attributes = p.leadingComment(n, file)
		out = append(out, sym)
	}
	return out
}

func (p Provider) buildVarDecls(n *sitter.Node, file *provider.ParsedFile) []core.Symbol {
	var out []core.Symbol
	for i := 0; i < int(n.ChildCount()); i++ {
		spec := n.Child(i)
		if spec.Type() != "var_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			if nameNode = spec.NamedChild(0); nameNode == nil {
				continue
			}
		}
		sym := core.Symbol{
			Name:     nameNode.Content(file.Source),
			Kind:     core.KindVariable,
			Language: p.Lang(),
			File:     file.Path,
			Range:    provider.NodeRange(n),
		}
		sym.Attributes = p.leadingComment(n, file)
		out = append(out, sym)
	}
	return out
}

func (p Provider) leadingComment(n *sitter.Node, file *provider.ParsedFile) *core.SymbolAttributes {
	text, rng, ok := provider.CollectLeadingComment(file.Source, n.StartPoint().Row+1, nil)
	if !ok {
		return nil
	}
	return &core.SymbolAttributes{Comment: text, CommentRange: rng}
}

func (p Provider) attachCallGraph(root *sitter.Node, file *provider.ParsedFile, symbols []core.Symbol) {
	enclosing := func(line uint32) int {
		best := -1
		var bestSpan uint32
		for i, s := range symbols {
			if s.Kind != core.KindFunction && s.Kind != core.KindMethod {
				continue
			}
			if line < s.Range.StartLine || line > s.Range.EndLine {
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
		if n.Type() == "call_expression" {
			callee := calleeName(n, file.Source)
			if callee != "" {
				line := n.StartPoint().Row + 1
				if callerIdx := enclosing(line); callerIdx != -1 {
					l := line
					ref := core.CallRef{Name: callee, File: file.Path, Line: &l}
					for j := range symbols {
						if symbols[j].Name == callee && (symbols[j].Kind == core.KindFunction || symbols[j].Kind == core.KindMethod) {
							k := symbols[j].Kind
							ref.Kind = &k
							break
						}
					}
					symbols[callerIdx].Calls = append(symbols[callerIdx].Calls, ref)
					callerKind := symbols[callerIdx].Kind
					for j := range symbols {
						if symbols[j].Name == callee && (symbols[j].Kind == core.KindFunction || symbols[j].Kind == core.KindMethod) {
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

func calleeName(n *sitter.Node, source []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(source)
	case "selector_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			return field.Content(source)
		}
	}
	return ""
}

func (p Provider) ContextSnippet(file *provider.ParsedFile, symbol core.Symbol, kind core.ContextKind) (core.ContextInfo, error) {
	info := provider.BasicContextSnippet(file.Source, symbol.File, symbol.Range, kind)
	if kind == core.ContextDecl {
		info.Range = declRangeForFunction(file, symbol)
	}
	info.ParentChain = parentChain(file.Path, symbol)
	return info, nil
}

func declRangeForFunction(file *provider.ParsedFile, symbol core.Symbol) core.TextRange {
	root := file.Tree.RootNode()
	start, end := provider.RangeToPoints(symbol.Range)
	n := root.NamedDescendantForPointRange(start, end)
	if n == nil {
		return symbol.Range
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return symbol.Range
	}
	bodyStart := body.StartPoint().Row + 1
	if bodyStart <= symbol.Range.StartLine {
		return provider.BasicContextSnippet(file.Source, symbol.File, symbol.Range, core.ContextDecl).Range
	}
	lines := strings.Split(strings.TrimRight(string(file.Source), "\n"), "\n")
	endLine := bodyStart - 1
	endCol := uint32(1)
	if int(endLine)-1 < len(lines) && endLine >= 1 {
		endCol = uint32(len(lines[endLine-1])) + 1
	}
	return core.TextRange{StartLine: symbol.Range.StartLine, StartColumn: 1, EndLine: endLine, EndColumn: endCol}
}

func parentChain(path string, symbol core.Symbol) []core.ContextNode {
	chain := []core.ContextNode{provider.FileContextNode(path)}
	if symbol.Kind == core.KindMethod && symbol.Signature != "" {
		if recv, ok := receiverFromSignature(symbol.Signature); ok {
			kind := core.KindClass
			chain = append(chain, core.ContextNode{Name: recv, Kind: &kind})
		}
	}
	return chain
}

func receiverFromSignature(sig string) (string, bool) {
	if !strings.HasPrefix(sig, "(") {
		return "", false
	}
	end := strings.Index(sig, ")")
	if end < 1 {
		return "", false
	}
	return strings.TrimPrefix(sig[:end], "("), true
}
