package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/termfx/symgrep/internal/core"
)

func TestSnippetForRangeJoinsInclusiveLines(t *testing.T) {
	source := []byte("line1\nline2\nline3\nline4\n")
	got := SnippetForRange(source, core.TextRange{StartLine: 2, EndLine: 3})
	assert.Equal(t, "line2\nline3", got)
}

func TestSnippetForRangeClampsOutOfBoundsEnd(t *testing.T) {
	source := []byte("line1\nline2\n")
	got := SnippetForRange(source, core.TextRange{StartLine: 1, EndLine: 100})
	assert.Equal(t, "line1\nline2", got)
}

func TestSnippetForRangeReturnsEmptyForOutOfBoundsStart(t *testing.T) {
	source := []byte("line1\nline2\n")
	assert.Empty(t, SnippetForRange(source, core.TextRange{StartLine: 10, EndLine: 12}))
	assert.Empty(t, SnippetForRange(nil, core.TextRange{StartLine: 1, EndLine: 1}))
}

func TestBasicContextSnippetDeclNarrowsToSingleLine(t *testing.T) {
	source := []byte("func F() {\n\treturn\n}\n")
	info := BasicContextSnippet(source, "a.go", core.TextRange{StartLine: 1, EndLine: 3}, core.ContextDecl)
	assert.Equal(t, "func F() {", info.Snippet)
	assert.Equal(t, uint32(1), info.Range.StartLine)
	assert.Equal(t, uint32(1), info.Range.EndLine)
}

func TestBasicContextSnippetDefKeepsFullRange(t *testing.T) {
	source := []byte("func F() {\n\treturn\n}\n")
	info := BasicContextSnippet(source, "a.go", core.TextRange{StartLine: 1, EndLine: 3}, core.ContextDef)
	assert.Equal(t, "func F() {\n\treturn\n}", info.Snippet)
}

func TestFileContextNodeUsesBaseName(t *testing.T) {
	node := FileContextNode("/path/to/a.go")
	assert.Equal(t, "a.go", node.Name)
	assert.Nil(t, node.Kind)
}

func TestCollectLeadingCommentGathersContiguousLineComments(t *testing.T) {
	source := []byte("// first\n// second\nfunc F() {}\n")
	text, rng, ok := CollectLeadingComment(source, 3, nil)
	require := assert.New(t)
	require.True(ok)
	require.Equal("first\nsecond", text)
	require.Equal(uint32(1), rng.StartLine)
	require.Equal(uint32(2), rng.EndLine)
}

func TestCollectLeadingCommentStopsAtBlankLine(t *testing.T) {
	source := []byte("// stale\n\nfunc F() {}\n")
	_, _, ok := CollectLeadingComment(source, 3, nil)
	assert.False(t, ok)
}

func TestCollectLeadingCommentHonorsDecoratorLines(t *testing.T) {
	source := []byte("# docstring\n@decorator\ndef f():\n    pass\n")
	isDecorator := func(line string) bool {
		trimmed := line
		for len(trimmed) > 0 && trimmed[0] == ' ' {
			trimmed = trimmed[1:]
		}
		return len(trimmed) > 0 && trimmed[0] == '@'
	}
	text, _, ok := CollectLeadingComment(source, 3, isDecorator)
	assert.True(t, ok)
	assert.Equal(t, "docstring", text)
}

func TestCollectLeadingCommentReturnsFalseOnFirstLine(t *testing.T) {
	_, _, ok := CollectLeadingComment([]byte("func F() {}\n"), 1, nil)
	assert.False(t, ok)
}
