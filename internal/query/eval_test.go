package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/termfx/symgrep/internal/core"
)

func TestMatchValueIsCaseSensitiveForNonLanguageFields(t *testing.T) {
	term := core.QueryTerm{Field: core.FieldName, Value: "Add"}
	assert.True(t, matchValue("Add", term))
	assert.False(t, matchValue("add", term))
}

func TestMatchValueExactIsCaseSensitive(t *testing.T) {
	term := core.QueryTerm{Field: core.FieldName, Value: "Add", Exact: true}
	assert.True(t, matchValue("Add", term))
	assert.False(t, matchValue("add", term))
	assert.False(t, matchValue("AddOne", term))
}

func TestMatchMetadataTermLanguageIsCaseInsensitive(t *testing.T) {
	sym := core.Symbol{Language: "Go"}
	assert.True(t, matchMetadataTerm(core.QueryTerm{Field: core.FieldLanguage, Value: "go"}, sym))
	assert.True(t, matchMetadataTerm(core.QueryTerm{Field: core.FieldLanguage, Value: "GO"}, sym))
	assert.False(t, matchMetadataTerm(core.QueryTerm{Field: core.FieldLanguage, Value: "python"}, sym))
}

func TestMatchValueLiteralRequiresWordBoundary(t *testing.T) {
	term := core.QueryTerm{Field: core.FieldName, Value: "add", Literal: true}
	assert.True(t, matchValue("add", term))
	assert.True(t, matchValue("can add item", term))
	assert.False(t, matchValue("addItem", term))
	assert.False(t, matchValue("preadd", term))
}

func TestMatchValueLiteralIsCaseSensitive(t *testing.T) {
	term := core.QueryTerm{Field: core.FieldName, Value: "Add", Literal: true}
	assert.True(t, matchValue("Add", term))
	assert.False(t, matchValue("add", term))
}

func TestMatchMetadataSkipsBodyFieldsOptimistically(t *testing.T) {
	expr := &core.QueryExpr{Groups: [][]core.QueryTerm{{{Field: core.FieldContent, Value: "anything"}}}}
	sym := core.Symbol{Name: "Whatever"}
	assert.True(t, MatchMetadata(expr, sym))
}

func TestMatchMetadataRequiresEveryGroupToMatch(t *testing.T) {
	expr := &core.QueryExpr{Groups: [][]core.QueryTerm{
		{{Field: core.FieldName, Value: "Add"}},
		{{Field: core.FieldKind, Value: "func"}},
	}}
	sym := core.Symbol{Name: "Add", Kind: core.KindFunction}
	assert.True(t, MatchMetadata(expr, sym))

	sym.Kind = core.KindVariable
	assert.False(t, MatchMetadata(expr, sym))
}

func TestMatchFullContentFallsBackToNameWhenUnmaterialized(t *testing.T) {
	expr := &core.QueryExpr{ContentOnly: true, Groups: [][]core.QueryTerm{{{Field: core.FieldContent, Value: "Add"}}}}
	sym := core.Symbol{Name: "Add"}
	assert.True(t, MatchFull(expr, sym, "", false))
}

func TestMatchFullMatchesMaterializedSnippet(t *testing.T) {
	expr := &core.QueryExpr{ContentOnly: true, Groups: [][]core.QueryTerm{{{Field: core.FieldContent, Value: "return total"}}}}
	sym := core.Symbol{Name: "Sum"}
	assert.True(t, MatchFull(expr, sym, "func Sum() int {\n\treturn total\n}", true))
	assert.False(t, MatchFull(expr, sym, "func Sum() int {\n\treturn 0\n}", true))
}

func TestMatchFullKeywordMatchesSymbolAttributes(t *testing.T) {
	expr := &core.QueryExpr{Groups: [][]core.QueryTerm{{{Field: core.FieldKeyword, Value: "deprecated"}}}}
	sym := core.Symbol{Name: "Old", Attributes: &core.SymbolAttributes{Keywords: []string{"deprecated", "legacy"}}}
	assert.True(t, MatchFull(expr, sym, "", false))

	sym.Attributes = nil
	assert.False(t, MatchFull(expr, sym, "", false))
}

func TestWithLiteralLeavesExprUntouchedWhenFalse(t *testing.T) {
	expr := &core.QueryExpr{Groups: [][]core.QueryTerm{{{Field: core.FieldName, Value: "Add"}}}}
	out := WithLiteral(expr, false)
	assert.Same(t, expr, out)
}

func TestWithLiteralMarksEveryTermAcrossGroups(t *testing.T) {
	expr := &core.QueryExpr{Groups: [][]core.QueryTerm{
		{{Field: core.FieldName, Value: "Add"}},
		{{Field: core.FieldKind, Value: "func"}, {Field: core.FieldKind, Value: "method"}},
	}}
	out := WithLiteral(expr, true)

	require := assert.New(t)
	require.NotSame(expr, out)
	for _, group := range out.Groups {
		for _, term := range group {
			require.True(term.Literal)
		}
	}
	// original is untouched
	for _, group := range expr.Groups {
		for _, term := range group {
			require.False(term.Literal)
		}
	}
}

func TestWithLiteralOnNilExprReturnsNil(t *testing.T) {
	assert.Nil(t, WithLiteral(nil, true))
}
