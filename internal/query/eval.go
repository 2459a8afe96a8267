package query

import (
	"strings"
	"unicode"

	"github.com/termfx/symgrep/internal/core"
)

// MatchMetadata evaluates only fields that don't require a materialized
// body (name/kind/file/language/calls/called_by, and keyword against the
// symbol's attributes). Body-requiring fields
// (content/comment/description) are treated as optimistically
// true so a symbol is never pruned before its body has been fetched —
// mirroring the original metadata-then-full two-phase evaluation.
func MatchMetadata(expr *core.QueryExpr, sym core.Symbol) bool {
	for _, group := range expr.Groups {
		if !anyTermMatches(group, func(t core.QueryTerm) bool {
			if core.IsBodyField(t.Field) {
				return true
			}
			return matchMetadataTerm(t, sym)
		}) {
			return false
		}
	}
	return true
}

// MatchFull evaluates every field, including content/comment/description
// against a materialized snippet and keyword/calls/called_by against the
// symbol's own fields. snippet is the symbol's context body; ok reports
// whether a snippet was successfully materialized (a content term against
// an unmaterialized symbol falls back to matching the symbol's name, as
// the original engine does for its Text field).
func MatchFull(expr *core.QueryExpr, sym core.Symbol, snippet string, ok bool) bool {
	if expr.ContentOnly {
		return anyTermMatches(expr.Groups[0], func(t core.QueryTerm) bool {
			return matchContent(t, sym, snippet, ok)
		})
	}
	for _, group := range expr.Groups {
		if !anyTermMatches(group, func(t core.QueryTerm) bool {
			return matchFullTerm(t, sym, snippet, ok)
		}) {
			return false
		}
	}
	return true
}

func anyTermMatches(group []core.QueryTerm, pred func(core.QueryTerm) bool) bool {
	for _, t := range group {
		if pred(t) {
			return true
		}
	}
	return false
}

func matchMetadataTerm(t core.QueryTerm, sym core.Symbol) bool {
	switch t.Field {
	case core.FieldName:
		return matchValue(sym.Name, t)
	case core.FieldKind:
		return matchKind(t.Value, sym.Kind)
	case core.FieldFile:
		return matchValue(sym.File, t)
	case core.FieldLanguage:
		return strings.EqualFold(sym.Language, t.Value)
	case core.FieldCalls:
		return matchCallRefs(sym.Calls, t)
	case core.FieldCalledBy:
		return matchCallRefs(sym.CalledBy, t)
	case core.FieldKeyword:
		return matchKeywords(sym, t)
	default:
		return false
	}
}

func matchFullTerm(t core.QueryTerm, sym core.Symbol, snippet string, hasSnippet bool) bool {
	switch t.Field {
	case core.FieldContent:
		return matchContent(t, sym, snippet, hasSnippet)
	case core.FieldComment:
		return matchValue(attributeComment(sym), t)
	case core.FieldDescription:
		return matchValue(attributeDescription(sym), t)
	case core.FieldKeyword:
		return matchKeywords(sym, t)
	default:
		return matchMetadataTerm(t, sym)
	}
}

func matchContent(t core.QueryTerm, sym core.Symbol, snippet string, hasSnippet bool) bool {
	if hasSnippet {
		return matchValue(snippet, t)
	}
	return matchValue(sym.Name, t)
}

func matchKeywords(sym core.Symbol, t core.QueryTerm) bool {
	if sym.Attributes == nil {
		return false
	}
	for _, kw := range sym.Attributes.Keywords {
		if matchValue(kw, t) {
			return true
		}
	}
	return false
}

func matchCallRefs(refs []core.CallRef, t core.QueryTerm) bool {
	for _, r := range refs {
		if matchValue(r.Name, t) {
			return true
		}
	}
	return false
}

func matchKind(value string, kind core.SymbolKind) bool {
	if parsed, ok := ParseSymbolKind(value); ok {
		return parsed == kind
	}
	return strings.EqualFold(value, string(kind))
}

func attributeComment(sym core.Symbol) string {
	if sym.Attributes == nil {
		return ""
	}
	return sym.Attributes.Comment
}

func attributeDescription(sym core.Symbol) string {
	if sym.Attributes == nil {
		return ""
	}
	return sym.Attributes.Description
}

// matchValue applies a term's exact/literal modifiers uniformly across
// every field: Exact forces exact equality, Literal forces a word-boundary
// match, and the default is a substring match. All case-sensitive —
// language and kind are the only fields compared case-insensitively, and
// both bypass matchValue entirely (see matchMetadataTerm and matchKind).
func matchValue(candidate string, t core.QueryTerm) bool {
	if t.Exact {
		return candidate == t.Value
	}
	if t.Literal {
		return wordBoundaryContains(candidate, t.Value)
	}
	return strings.Contains(candidate, t.Value)
}

func wordBoundaryContains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		pos := start + idx
		before := pos == 0 || !isWordRune(rune(haystack[pos-1]))
		after := pos+len(needle) >= len(haystack) || !isWordRune(rune(haystack[pos+len(needle)]))
		if before && after {
			return true
		}
		start = pos + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
