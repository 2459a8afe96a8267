// Package javascript implements the JavaScript/JSX language backend atop
// internal/provider's generic table-driven extractor.
package javascript

import (
	"strings"

	jssitter "github.com/smacker/go-tree-sitter/javascript"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

// New returns a JavaScript language backend.
func New() provider.LanguageProvider {
	return provider.NewGeneric(provider.Config{
		LangID:     "javascript",
		AliasList:  []string{"javascript", "js", "jsx"},
		ExtList:    []string{".js", ".jsx", ".mjs", ".cjs"},
		SitterLang: jssitter.GetLanguage,
		BodyField:  "body",
		Symbols: []provider.SymbolRule{
			{NodeType: "function_declaration", Kind: core.KindFunction, NameField: "name"},
			{NodeType: "method_definition", Kind: core.KindMethod, NameField: "name"},
			{NodeType: "class_declaration", Kind: core.KindClass, NameField: "name"},
			{NodeType: "variable_declarator", Kind: core.KindVariable, NameField: "name"},
		},
		Scopes: []provider.ScopeRule{
			{NodeType: "class_declaration", Kind: core.KindClass, NameField: "name"},
			{NodeType: "function_declaration", Kind: core.KindFunction, NameField: "name"},
		},
		Call: provider.CallRule{
			NodeType:      "call_expression",
			FunctionField: "function",
			MemberFields:  []string{"property"},
		},
		IsDecorator: func(line string) bool { return strings.HasPrefix(strings.TrimSpace(line), "@") },
	})
}
