// Package python implements the Python language backend atop
// internal/provider's generic table-driven extractor.
package python

import (
	"strings"

	pysitter "github.com/smacker/go-tree-sitter/python"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

// New returns a Python language backend.
func New() provider.LanguageProvider {
	return provider.NewGeneric(provider.Config{
		LangID:     "python",
		AliasList:  []string{"python", "py"},
		ExtList:    []string{".py"},
		SitterLang: pysitter.GetLanguage,
		BodyField:  "body",
		Symbols: []provider.SymbolRule{
			{NodeType: "function_definition", Kind: core.KindFunction, NameField: "name", MethodWhenNestedIn: []string{"class_definition"}},
			{NodeType: "class_definition", Kind: core.KindClass, NameField: "name"},
		},
		Scopes: []provider.ScopeRule{
			{NodeType: "class_definition", Kind: core.KindClass, NameField: "name"},
			{NodeType: "function_definition", Kind: core.KindFunction, NameField: "name"},
		},
		Call: provider.CallRule{
			NodeType:      "call",
			FunctionField: "function",
			MemberFields:  []string{"attribute"},
		},
		IsDecorator: func(line string) bool { return strings.HasPrefix(strings.TrimSpace(line), "@") },
	})
}
