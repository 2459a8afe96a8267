package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunRejectsEmptyPattern(t *testing.T) {
	_, err := Run(context.Background(), core.SearchConfig{Pattern: "  ", Paths: []string{"."}})
	require.Error(t, err)
}

// Text-mode search must walk plain-text files even though they carry no
// registered source-language extension.
func TestRunTextModeMatchesNonSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello needle world\n")
	writeFile(t, dir, "b.txt", "another needle here\n")

	result, err := Run(context.Background(), core.SearchConfig{
		Pattern: "needle", Paths: []string{dir}, Mode: core.ModeText,
	})
	require.NoError(t, err)
	assert.Len(t, result.Matches, 2)
}

func TestRunTextModeLiteralRequiresWordBoundary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "literal.txt", "add\naddItem\npreadd\n")

	result, err := Run(context.Background(), core.SearchConfig{
		Pattern: "add", Paths: []string{dir}, Mode: core.ModeText, Literal: true,
	})
	require.NoError(t, err)
	assert.Len(t, result.Matches, 1)
}

func TestRunSymbolModeNameFieldIsCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc Add() int { return 1 }\n\nfunc add() int { return 2 }\n")

	result, err := Run(context.Background(), core.SearchConfig{
		Pattern: "name:Add", Paths: []string{dir}, Mode: core.ModeSymbol,
	})
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "Add", result.Symbols[0].Name)
}

// --literal scoped to symbol mode must reach query.MatchMetadata, not just
// the text-mode line scanner.
func TestRunSymbolModeLiteralNarrowsNameMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc add() int { return 1 }\n\nfunc addItem() int { return 2 }\n")

	withoutLiteral, err := Run(context.Background(), core.SearchConfig{
		Pattern: "name:add", Paths: []string{dir}, Mode: core.ModeSymbol,
	})
	require.NoError(t, err)
	assert.Len(t, withoutLiteral.Symbols, 2)

	withLiteral, err := Run(context.Background(), core.SearchConfig{
		Pattern: "name:add", Paths: []string{dir}, Mode: core.ModeSymbol, Literal: true,
	})
	require.NoError(t, err)
	require.Len(t, withLiteral.Symbols, 1)
	assert.Equal(t, "add", withLiteral.Symbols[0].Name)
}

func TestRunSymbolModeLanguageFieldIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc F() {}\n")

	result, err := Run(context.Background(), core.SearchConfig{
		Pattern: "language:GO", Paths: []string{dir}, Mode: core.ModeSymbol,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Symbols)
}

func TestEffectiveModeDefaultsToTextWithoutKnownLanguage(t *testing.T) {
	assert.Equal(t, core.ModeText, effectiveMode(core.SearchConfig{}))
	assert.Equal(t, core.ModeSymbol, effectiveMode(core.SearchConfig{Language: "go"}))
	assert.Equal(t, core.ModeText, effectiveMode(core.SearchConfig{Language: "not-a-language"}))
}

func TestFindLiteralIdentifierRequiresWordBoundary(t *testing.T) {
	assert.Equal(t, 0, findLiteralIdentifier("add more", "add"))
	assert.Equal(t, -1, findLiteralIdentifier("addItem", "add"))
	assert.Equal(t, -1, findLiteralIdentifier("preadd", "add"))
	assert.Equal(t, -1, findLiteralIdentifier("anything", ""))
}
