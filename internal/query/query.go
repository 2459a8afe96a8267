// Package query implements the structured Query DSL: tokenizing a pattern
// into fielded AND/OR terms and evaluating those terms against symbol
// metadata and materialized bodies.
package query

import (
	"strings"

	"github.com/termfx/symgrep/internal/core"
)

var fieldAliases = map[string]core.QueryField{
	"name":        core.FieldName,
	"kind":        core.FieldKind,
	"file":        core.FieldFile,
	"language":    core.FieldLanguage,
	"content":     core.FieldContent,
	"comment":     core.FieldComment,
	"keyword":     core.FieldKeyword,
	"description": core.FieldDescription,
	"calls":       core.FieldCalls,
	"called_by":   core.FieldCalledBy,
	"callers":     core.FieldCalledBy,
}

var kindAliases = map[string]core.SymbolKind{
	"function":  core.KindFunction,
	"func":      core.KindFunction,
	"method":    core.KindMethod,
	"class":     core.KindClass,
	"struct":    core.KindClass,
	"interface": core.KindInterface,
	"variable":  core.KindVariable,
	"var":       core.KindVariable,
	"namespace": core.KindNamespace,
	"ns":        core.KindNamespace,
}

// ParseSymbolKind resolves a DSL kind value (with aliases) to a canonical
// SymbolKind.
func ParseSymbolKind(value string) (core.SymbolKind, bool) {
	k, ok := kindAliases[strings.ToLower(value)]
	return k, ok
}

// WithLiteral returns expr unchanged when literal is false. Otherwise it
// returns a copy with every term's Literal flag set, so --literal reaches
// symbol-mode evaluation (query.MatchMetadata/MatchFull) the same way it
// already reaches text-mode line scanning.
func WithLiteral(expr *core.QueryExpr, literal bool) *core.QueryExpr {
	if !literal || expr == nil {
		return expr
	}
	groups := make([][]core.QueryTerm, len(expr.Groups))
	for i, group := range expr.Groups {
		newGroup := make([]core.QueryTerm, len(group))
		for j, t := range group {
			t.Literal = true
			newGroup[j] = t
		}
		groups[i] = newGroup
	}
	clone := *expr
	clone.Groups = groups
	return &clone
}

// Parse tokenizes and parses a raw pattern into a QueryExpr. An empty (or
// whitespace-only) pattern returns (nil, core.ErrEmptyPattern).
func Parse(input string) (*core.QueryExpr, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, core.ErrEmptyPattern
	}

	if !strings.Contains(trimmed, ":") {
		var group []core.QueryTerm
		for _, alt := range strings.Split(trimmed, "|") {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				continue
			}
			group = append(group, parseValueOnly(alt))
		}
		if len(group) == 0 {
			return nil, core.ErrEmptyPattern
		}
		return &core.QueryExpr{Groups: [][]core.QueryTerm{group}, ContentOnly: true, Raw: trimmed}, nil
	}

	tokens := tokenize(trimmed)
	var groups [][]core.QueryTerm
	for _, token := range tokens {
		var group []core.QueryTerm
		var defaultField core.QueryField
		haveDefault := false
		for _, alt := range strings.Split(token, "|") {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				continue
			}
			var term core.QueryTerm
			if strings.Contains(alt, ":") || !haveDefault {
				term = parseTerm(alt)
				if !haveDefault {
					defaultField = term.Field
					haveDefault = true
				}
			} else {
				term = parseValueOnly(alt)
				term.Field = defaultField
			}
			group = append(group, term)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	if len(groups) == 0 {
		return nil, core.ErrEmptyPattern
	}
	return &core.QueryExpr{Groups: groups, Raw: trimmed}, nil
}

// tokenize splits input on whitespace, honoring double-quoted segments
// that may contain spaces.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case isSpace(r) && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// parseTerm splits a "field:value" atom, applying the exact-prefix rule
// uniformly across every field. An unknown field prefix falls back to a
// name term over the whole atom.
func parseTerm(atom string) core.QueryTerm {
	head, rest, found := strings.Cut(atom, ":")
	if !found {
		return parseValueOnly(atom)
	}
	field, ok := fieldAliases[strings.ToLower(head)]
	if !ok {
		return parseValueOnly(atom)
	}
	return withExact(field, rest)
}

func parseValueOnly(value string) core.QueryTerm {
	return withExact(core.FieldName, value)
}

func withExact(field core.QueryField, value string) core.QueryTerm {
	if exact, ok := strings.CutPrefix(value, "="); ok {
		return core.QueryTerm{Field: field, Value: exact, Exact: true}
	}
	return core.QueryTerm{Field: field, Value: value}
}
