package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFindsConfigInAncestorDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".symgrep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".symgrep", "config.toml"), []byte(`
[search]
language = "go"
use_index = true

[http]
server_url = "http://localhost:7878"
`), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(nested))

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.Search)
	require.Equal(t, "go", cfg.Search.Language)
	require.True(t, cfg.Search.UseIndex)
	require.Equal(t, "http://localhost:7878", cfg.ServerURL())
}

func TestLoadReturnsNilWhenNoConfigFound(t *testing.T) {
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load()
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestFindProjectConfigPrefersConfigTomlOverSymgrepToml(t *testing.T) {
	dir := t.TempDir()
	symgrepDir := filepath.Join(dir, ".symgrep")
	require.NoError(t, os.MkdirAll(symgrepDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(symgrepDir, "config.toml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(symgrepDir, "symgrep.toml"), []byte(""), 0o644))

	path, ok := findProjectConfig(dir)
	require.True(t, ok)
	require.Equal(t, filepath.Join(symgrepDir, "config.toml"), path)
}
