// Package cpp implements the C++ language backend. It is hand-written
// rather than built on internal/provider's generic extractor because
// cpp's grammar buries declarator names (pointer/reference/qualified
// wrappers) several levels below the declaration node.
package cpp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	cppsitter "github.com/smacker/go-tree-sitter/cpp"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

// Provider implements provider.LanguageProvider for C++.
type Provider struct{}

// New returns a C++ language backend.
func New() provider.LanguageProvider { return Provider{} }

func (Provider) Lang() string         { return "cpp" }
func (Provider) Aliases() []string    { return []string{"cpp", "c++", "cxx"} }
func (Provider) Extensions() []string { return []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h"} }
func (Provider) GetSitterLanguage() *sitter.Language { return cppsitter.GetLanguage() }

func (p Provider) Parse(path string, source []byte) (*provider.ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.GetSitterLanguage())
	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil {
		return nil, core.ParseErr("parse cpp source: "+path, err)
	}
	pf := &provider.ParsedFile{Language: p.Lang(), Path: path, Tree: tree, Source: source}
	if pf.RootHasErrors() {
		return nil, core.ParseErr("syntax errors in "+path, nil)
	}
	return pf, nil
}

func symbolName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier", "type_identifier", "namespace_identifier":
			return child.Content(source)
		case "function_declarator", "pointer_declarator", "reference_declarator", "qualified_identifier":
			if name := symbolName(child, source); name != "" {
				return name
			}
		}
	}
	return ""
}

func isMethod(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_specifier", "struct_specifier":
			return true
		case "translation_unit":
			return false
		}
	}
	return false
}

func fieldIsFunction(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "function_declarator" {
			return true
		}
	}
	return false
}

func (p Provider) IndexSymbols(file *provider.ParsedFile) ([]core.Symbol, error) {
	root := file.Tree.RootNode()
	var symbols []core.Symbol

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			if name := symbolName(n, file.Source); name != "" {
				kind := core.KindFunction
				if isMethod(n) {
					kind = core.KindMethod
				}
				symbols = append(symbols, p.build(n, file, name, kind))
			}
		case "field_declaration":
			if fieldIsFunction(n) {
				if name := symbolName(n, file.Source); name != "" {
					symbols = append(symbols, p.build(n, file, name, core.KindMethod))
				}
			}
		case "class_specifier":
			if name := symbolName(n, file.Source); name != "" {
				symbols = append(symbols, p.build(n, file, name, core.KindClass))
			}
		case "struct_specifier":
			if name := symbolName(n, file.Source); name != "" {
				symbols = append(symbols, p.build(n, file, name, core.KindClass))
			}
		case "namespace_definition":
			if name := symbolName(n, file.Source); name != "" {
				symbols = append(symbols, p.build(n, file, name, core.KindNamespace))
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

func (p Provider) build(n *sitter.Node, file *provider.ParsedFile, name string, kind core.SymbolKind) core.Symbol {
	sym := core.Symbol{
		Name:     name,
		Kind:     kind,
		Language: p.Lang(),
		File:     file.Path,
		Range:    provider.NodeRange(n),
	}
	isDecorator := func(line string) bool { return strings.HasPrefix(strings.TrimSpace(line), "[[") }
	if text, rng, ok := provider.CollectLeadingComment(file.Source, n.StartPoint().Row+1, isDecorator); ok {
		sym.Attributes = &core.SymbolAttributes{Comment: text, CommentRange: rng}
	}
	return sym
}

func (p Provider) attachCallGraph(root *sitter.Node, file *provider.ParsedFile, symbols []core.Symbol) {
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
		if n.Type() == "call_expression" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				callee := fn.Content(file.Source)
				if fn.Type() == "field_expression" {
					if field := fn.ChildByFieldName("field"); field != nil {
						callee = field.Content(file.Source)
					}
				}
				if callee != "" {
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
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p Provider) ContextSnippet(file *provider.ParsedFile, symbol core.Symbol, kind core.ContextKind) (core.ContextInfo, error) {
	info := provider.BasicContextSnippet(file.Source, symbol.File, symbol.Range, kind)
	if kind == core.ContextDecl {
		info.Range = p.declRange(file, symbol)
	}
	info.ParentChain = p.parentChain(file, symbol)
	return info, nil
}

func (p Provider) declRange(file *provider.ParsedFile, symbol core.Symbol) core.TextRange {
	root := file.Tree.RootNode()
	start, end := provider.RangeToPoints(symbol.Range)
	n := root.NamedDescendantForPointRange(start, end)
	if n == nil || n.Type() != "function_definition" {
		return provider.BasicContextSnippet(file.Source, symbol.File, symbol.Range, core.ContextDecl).Range
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return provider.BasicContextSnippet(file.Source, symbol.File, symbol.Range, core.ContextDecl).Range
	}
	bodyStart := body.StartPoint().Row + 1
	endLine := symbol.Range.StartLine
	if bodyStart > symbol.Range.StartLine {
		endLine = bodyStart - 1
	}
	lines := strings.Split(strings.TrimRight(string(file.Source), "\n"), "\n")
	endCol := uint32(1)
	if endLine >= 1 && int(endLine)-1 < len(lines) {
		endCol = uint32(len(lines[endLine-1])) + 1
	}
	return core.TextRange{StartLine: symbol.Range.StartLine, StartColumn: 1, EndLine: endLine, EndColumn: endCol}
}

func (p Provider) parentChain(file *provider.ParsedFile, symbol core.Symbol) []core.ContextNode {
	chain := []core.ContextNode{provider.FileContextNode(file.Path)}
	root := file.Tree.RootNode()
	start, end := provider.RangeToPoints(symbol.Range)
	n := root.NamedDescendantForPointRange(start, end)
	if n == nil {
		return chain
	}
	var ancestors []core.ContextNode
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		var kind core.SymbolKind
		switch parent.Type() {
		case "class_specifier", "struct_specifier":
			kind = core.KindClass
		case "namespace_definition":
			kind = core.KindNamespace
		default:
			continue
		}
		if name := symbolName(parent, file.Source); name != "" {
			ancestors = append(ancestors, core.ContextNode{Name: name, Kind: &kind})
		}
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return append(chain, ancestors...)
}
