// Package lang holds the process-global, immutable-after-init table of
// language backends. New backends register here and require no changes
// to callers.
package lang

import (
	"path/filepath"
	"strings"

	"github.com/termfx/symgrep/internal/lang/cpp"
	"github.com/termfx/symgrep/internal/lang/golang"
	"github.com/termfx/symgrep/internal/lang/javascript"
	"github.com/termfx/symgrep/internal/lang/python"
	"github.com/termfx/symgrep/internal/lang/typescript"
	"github.com/termfx/symgrep/internal/provider"
)

var (
	byAlias = map[string]provider.LanguageProvider{}
	byExt   = map[string]provider.LanguageProvider{}
)

func init() {
	register(golang.New())
	register(typescript.New())
	register(javascript.New())
	register(python.New())
	register(cpp.New())
}

func register(p provider.LanguageProvider) {
	for _, alias := range p.Aliases() {
		byAlias[strings.ToLower(alias)] = p
	}
	for _, ext := range p.Extensions() {
		byExt[strings.ToLower(ext)] = p
	}
}

// ByLanguage resolves a provider by canonical id or alias, case-insensitive.
func ByLanguage(name string) (provider.LanguageProvider, bool) {
	p, ok := byAlias[strings.ToLower(name)]
	return p, ok
}

// ByPath resolves a provider by a file's extension, case-insensitive.
func ByPath(path string) (provider.LanguageProvider, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}
	p, ok := byExt[ext]
	return p, ok
}

// All returns every registered provider, used to enumerate extensions for
// a filesystem walk when no explicit language was requested.
func All() []provider.LanguageProvider {
	seen := map[string]bool{}
	var out []provider.LanguageProvider
	for _, p := range byAlias {
		if seen[p.Lang()] {
			continue
		}
		seen[p.Lang()] = true
		out = append(out, p)
	}
	return out
}
