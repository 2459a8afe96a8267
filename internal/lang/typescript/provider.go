// Package typescript implements the TypeScript/TSX language backend atop
// internal/provider's generic table-driven extractor.
package typescript

import (
	"strings"

	tssitter "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/provider"
)

// New returns a TypeScript language backend.
func New() provider.LanguageProvider {
	return provider.NewGeneric(provider.Config{
		LangID:     "typescript",
		AliasList:  []string{"typescript", "ts", "tsx"},
		ExtList:    []string{".ts", ".tsx"},
		SitterLang: tssitter.GetLanguage,
		BodyField:  "body",
		Symbols: []provider.SymbolRule{
			{NodeType: "function_declaration", Kind: core.KindFunction, NameField: "name"},
			{NodeType: "method_definition", Kind: core.KindMethod, NameField: "name"},
			{NodeType: "class_declaration", Kind: core.KindClass, NameField: "name"},
			{NodeType: "interface_declaration", Kind: core.KindInterface, NameField: "name"},
			{NodeType: "variable_declarator", Kind: core.KindVariable, NameField: "name"},
		},
		Scopes: []provider.ScopeRule{
			{NodeType: "class_declaration", Kind: core.KindClass, NameField: "name"},
			{NodeType: "module", Kind: core.KindNamespace, NameField: "name"},
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
