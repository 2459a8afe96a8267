// Package config discovers and loads the project-local `.symgrep/config.toml`
// (or `.symgrep/symgrep.toml`) file and applies its sections as defaults for
// values a CLI invocation did not explicitly set.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SearchSection mirrors the [search] table.
type SearchSection struct {
	Paths        []string `toml:"paths"`
	Globs        []string `toml:"globs"`
	ExcludeGlobs []string `toml:"exclude_globs"`
	Language     string   `toml:"language"`
	Literal      bool     `toml:"literal"`
	Mode         string   `toml:"mode"`
	Context      string   `toml:"context"`
	Limit        *uint64  `toml:"limit"`
	MaxLines     *uint64  `toml:"max_lines"`
	UseIndex     bool     `toml:"use_index"`
	IndexBackend string   `toml:"index_backend"`
	IndexPath    string   `toml:"index_path"`
	Format       string   `toml:"format"`
	Server       string   `toml:"server"`
	NoServer     bool     `toml:"no_server"`
}

// IndexSection mirrors the [index] table.
type IndexSection struct {
	Paths        []string `toml:"paths"`
	Globs        []string `toml:"globs"`
	ExcludeGlobs []string `toml:"exclude_globs"`
	Language     string   `toml:"language"`
	Backend      string   `toml:"backend"`
	IndexPath    string   `toml:"index_path"`
	Server       string   `toml:"server"`
	NoServer     bool     `toml:"no_server"`
}

// IndexInfoSection mirrors the [index_info] table.
type IndexInfoSection struct {
	Paths        []string `toml:"paths"`
	Globs        []string `toml:"globs"`
	ExcludeGlobs []string `toml:"exclude_globs"`
	Language     string   `toml:"language"`
	Backend      string   `toml:"backend"`
	IndexPath    string   `toml:"index_path"`
	Format       string   `toml:"format"`
	Server       string   `toml:"server"`
	NoServer     bool     `toml:"no_server"`
}

// ServeSection mirrors the [serve] table.
type ServeSection struct {
	Addr string `toml:"addr"`
}

// HTTPSection mirrors the [http] table: a global server_url fallback for
// every subcommand.
type HTTPSection struct {
	ServerURL string `toml:"server_url"`
}

// CliConfig is the parsed form of `.symgrep/config.toml`.
type CliConfig struct {
	Search    *SearchSection    `toml:"search"`
	Index     *IndexSection     `toml:"index"`
	IndexInfo *IndexInfoSection `toml:"index_info"`
	Serve     *ServeSection     `toml:"serve"`
	HTTP      *HTTPSection      `toml:"http"`
}

// Load discovers a project config by walking up from cwd and parses it.
// Returns (nil, nil) when no config file is found.
func Load() (*CliConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, ok := findProjectConfig(cwd)
	if !ok {
		return nil, nil
	}
	var cfg CliConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findProjectConfig walks upward from start looking for
// .symgrep/config.toml, then .symgrep/symgrep.toml, at each directory.
func findProjectConfig(start string) (string, bool) {
	dir := start
	for {
		symgrepDir := filepath.Join(dir, ".symgrep")
		configToml := filepath.Join(symgrepDir, "config.toml")
		if isFile(configToml) {
			return configToml, true
		}
		symgrepToml := filepath.Join(symgrepDir, "symgrep.toml")
		if isFile(symgrepToml) {
			return symgrepToml, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ServerURL resolves the [http].server_url global fallback, used by every
// subcommand when no section- or flag-level server was given.
func (c *CliConfig) ServerURL() string {
	if c == nil || c.HTTP == nil {
		return ""
	}
	return c.HTTP.ServerURL
}

// SearchSection returns the [search] table, or nil when absent.
func (c *CliConfig) SearchSection() *SearchSection {
	if c == nil {
		return nil
	}
	return c.Search
}

// IndexSection returns the [index] table, or nil when absent.
func (c *CliConfig) IndexSection() *IndexSection {
	if c == nil {
		return nil
	}
	return c.Index
}

// IndexInfoSection returns the [index_info] table, or nil when absent.
func (c *CliConfig) IndexInfoSection() *IndexInfoSection {
	if c == nil {
		return nil
	}
	return c.IndexInfo
}

// ServeSection returns the [serve] table, or nil when absent.
func (c *CliConfig) ServeSection() *ServeSection {
	if c == nil {
		return nil
	}
	return c.Serve
}
