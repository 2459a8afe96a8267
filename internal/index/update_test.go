package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/termfx/symgrep/internal/core"
)

func newTestIndex(t *testing.T) core.IndexConfig {
	t.Helper()
	return core.IndexConfig{Backend: core.IndexBackendFile, IndexPath: t.TempDir()}
}

func seedSymbol(t *testing.T, cfg core.IndexConfig) {
	t.Helper()
	backend, err := Open(cfg)
	require.NoError(t, err)
	defer backend.Close()

	file, err := backend.UpsertFile("handler.go", "go", "deadbeef", 1, 100)
	require.NoError(t, err)

	err = backend.SetFileSymbols(file.ID, []core.NewSymbolRecord{
		{
			FileID: file.ID, Name: "Handle", Kind: core.KindFunction, Language: "go",
			Range: core.TextRange{StartLine: 10, EndLine: 20}, Signature: "func Handle()",
		},
	})
	require.NoError(t, err)
}

func TestApplyAttributesReplacesKeywordsAndDescription(t *testing.T) {
	cfg := newTestIndex(t)
	seedSymbol(t, cfg)

	selector := core.SymbolSelector{
		File: "handler.go", Name: "Handle", Kind: core.KindFunction, Language: "go",
		StartLine: 10, EndLine: 20,
	}
	update := core.SymbolAttributesUpdate{Keywords: []string{"deprecated"}, Description: "legacy entrypoint"}

	symbol, err := ApplyAttributes(cfg, selector, update)
	require.NoError(t, err)
	require.NotNil(t, symbol.Attributes)
	require.Equal(t, []string{"deprecated"}, symbol.Attributes.Keywords)
	require.Equal(t, "legacy entrypoint", symbol.Attributes.Description)
	require.Equal(t, "Handle", symbol.Name)
	require.Equal(t, "handler.go", symbol.File)
}

func TestApplyAttributesMatchesWithinOneLineOfDrift(t *testing.T) {
	cfg := newTestIndex(t)
	seedSymbol(t, cfg)

	// off by one on both boundaries still matches.
	selector := core.SymbolSelector{
		File: "handler.go", Name: "Handle", Kind: core.KindFunction, Language: "go",
		StartLine: 11, EndLine: 19,
	}
	_, err := ApplyAttributes(cfg, selector, core.SymbolAttributesUpdate{Description: "ok"})
	require.NoError(t, err)
}

func TestApplyAttributesErrorsWhenFileNotIndexed(t *testing.T) {
	cfg := newTestIndex(t)
	seedSymbol(t, cfg)

	selector := core.SymbolSelector{File: "missing.go", Name: "X", Kind: core.KindFunction, Language: "go"}
	_, err := ApplyAttributes(cfg, selector, core.SymbolAttributesUpdate{})
	require.Error(t, err)
}

func TestApplyAttributesErrorsWhenNoSymbolMatches(t *testing.T) {
	cfg := newTestIndex(t)
	seedSymbol(t, cfg)

	selector := core.SymbolSelector{
		File: "handler.go", Name: "NotThere", Kind: core.KindFunction, Language: "go",
		StartLine: 10, EndLine: 20,
	}
	_, err := ApplyAttributes(cfg, selector, core.SymbolAttributesUpdate{})
	require.Error(t, err)
}

func TestBuildStampsIndexIDOnFirstBuildAndKeepsItStable(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.go"), []byte("package a\n\nfunc F() {}\n"), 0o644))
	cfg := core.IndexConfig{Paths: []string{srcDir}, Backend: core.IndexBackendFile, IndexPath: t.TempDir()}

	summary, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, summary.IndexID)

	again, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, summary.IndexID, again.IndexID)
}

func TestApplyAttributesPreservesOtherSymbolsInFile(t *testing.T) {
	cfg := newTestIndex(t)
	backend, err := Open(cfg)
	require.NoError(t, err)
	file, err := backend.UpsertFile("handler.go", "go", "deadbeef", 1, 100)
	require.NoError(t, err)
	require.NoError(t, backend.SetFileSymbols(file.ID, []core.NewSymbolRecord{
		{FileID: file.ID, Name: "Handle", Kind: core.KindFunction, Language: "go", Range: core.TextRange{StartLine: 10, EndLine: 20}},
		{FileID: file.ID, Name: "Other", Kind: core.KindFunction, Language: "go", Range: core.TextRange{StartLine: 30, EndLine: 40}},
	}))
	require.NoError(t, backend.Close())

	selector := core.SymbolSelector{File: "handler.go", Name: "Handle", Kind: core.KindFunction, Language: "go", StartLine: 10, EndLine: 20}
	_, err = ApplyAttributes(cfg, selector, core.SymbolAttributesUpdate{Description: "updated"})
	require.NoError(t, err)

	b2, err := Open(cfg)
	require.NoError(t, err)
	defer b2.Close()
	records, err := b2.QuerySymbols(core.SymbolQuery{Paths: []string{"handler.go"}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	var other core.SymbolRecord
	for _, r := range records {
		if r.Name == "Other" {
			other = r
		}
	}
	require.Equal(t, "Other", other.Name)
	require.Empty(t, other.Extra)
}
