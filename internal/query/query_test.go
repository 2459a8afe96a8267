package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
)

func TestParseRejectsEmptyOrWhitespacePattern(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := Parse(input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrEmptyPattern))
	}
}

func TestParseContentOnlyPatternWithoutField(t *testing.T) {
	expr, err := Parse("needle")
	require.NoError(t, err)
	assert.True(t, expr.ContentOnly)
	require.Len(t, expr.Groups, 1)
	require.Len(t, expr.Groups[0], 1)
	assert.Equal(t, "needle", expr.Groups[0][0].Value)
}

func TestParseContentOnlyPatternSplitsOrAlternatives(t *testing.T) {
	expr, err := Parse("foo|bar")
	require.NoError(t, err)
	require.Len(t, expr.Groups, 1)
	require.Len(t, expr.Groups[0], 2)
	assert.Equal(t, "foo", expr.Groups[0][0].Value)
	assert.Equal(t, "bar", expr.Groups[0][1].Value)
}

func TestParseFieldedTermResolvesAlias(t *testing.T) {
	expr, err := Parse("kind:func")
	require.NoError(t, err)
	require.Len(t, expr.Groups, 1)
	require.Len(t, expr.Groups[0], 1)
	term := expr.Groups[0][0]
	assert.Equal(t, core.FieldKind, term.Field)
	assert.Equal(t, "func", term.Value)
}

func TestParseUnknownFieldPrefixFallsBackToName(t *testing.T) {
	expr, err := Parse("bogus:value")
	require.NoError(t, err)
	term := expr.Groups[0][0]
	assert.Equal(t, core.FieldName, term.Field)
}

func TestParseTwoTokensAreAndedTogether(t *testing.T) {
	expr, err := Parse("name:foo kind:func")
	require.NoError(t, err)
	require.Len(t, expr.Groups, 2)
}

func TestParseSymbolKindAliases(t *testing.T) {
	for _, alias := range []string{"func", "function", "Function"} {
		kind, ok := ParseSymbolKind(alias)
		require.True(t, ok)
		assert.Equal(t, core.KindFunction, kind)
	}
	_, ok := ParseSymbolKind("nope")
	assert.False(t, ok)
}
