// Package walk implements the gitignore-aware, glob-filtered filesystem
// traversal shared by the search engine and the index builder.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/termfx/symgrep/internal/lang"
)

// skipDirs are traversed past regardless of .gitignore contents.
var skipDirs = []string{".git", "vendor", "node_modules", "dist", "build", ".symgrep"}

// Config controls a directory walk.
type Config struct {
	Globs        []string
	ExcludeGlobs []string
	Language     string
	NoGitignore  bool

	// RequireSourceLanguage restricts the walk to files with a registered
	// language provider extension even when Language is unset. Symbol-mode
	// callers (index build, symbol search) set this; text-mode search
	// leaves it false so arbitrary text files are still walked.
	RequireSourceLanguage bool
}

// Walker performs gitignore-aware traversal filtered by glob and language.
type Walker struct {
	cfg       Config
	gitignore *ignore.GitIgnore
}

// New builds a Walker, loading .gitignore files from cwd upward unless
// disabled.
func New(cfg Config) *Walker {
	w := &Walker{cfg: cfg}
	if !cfg.NoGitignore {
		w.loadGitignore()
	}
	return w
}

func (w *Walker) loadGitignore() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	var files []string
	for dir := cwd; ; {
		candidate := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(candidate); err == nil {
			files = append(files, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if len(files) == 0 {
		return
	}
	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}
	var gi *ignore.GitIgnore
	if len(files) == 1 {
		gi, err = ignore.CompileIgnoreFile(files[0])
	} else {
		gi, err = ignore.CompileIgnoreFileAndLines(files[0], files[1:]...)
	}
	if err == nil {
		w.gitignore = gi
	}
}

// Walk resolves a list of file/directory targets to a flat, deduplicated
// file list honoring the walker's filters. An empty targets list defaults
// to the current working directory.
func (w *Walker) Walk(ctx context.Context, targets []string) ([]string, error) {
	if len(targets) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		targets = []string{cwd}
	}

	var all []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		files, err := w.walkTarget(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("walking target %s: %w", target, err)
		}
		all = append(all, files...)
	}
	return dedupe(all), nil
}

func (w *Walker) walkTarget(ctx context.Context, target string) ([]string, error) {
	info, err := os.Lstat(target)
	if err != nil {
		return nil, fmt.Errorf("accessing target %s: %w", target, err)
	}
	if info.Mode().IsRegular() {
		if w.shouldInclude(target, info) {
			return []string{target}, nil
		}
		return nil, nil
	}
	if info.IsDir() {
		return w.walkDir(ctx, target)
	}
	return nil, nil
}

func (w *Walker) walkDir(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		full := filepath.Join(dir, path)
		if d.IsDir() {
			if path != "." && w.shouldSkipDir(path) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", full, err)
			}
			if w.shouldInclude(full, info) {
				files = append(files, full)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return files, nil
}

func (w *Walker) shouldInclude(path string, info os.FileInfo) bool {
	if w.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && w.gitignore.MatchesPath(rel) {
			return false
		}
	}

	if w.cfg.Language != "" {
		p, ok := lang.ByLanguage(w.cfg.Language)
		if !ok {
			return false
		}
		matched := false
		for _, ext := range p.Extensions() {
			if strings.EqualFold(filepath.Ext(path), ext) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	} else if w.cfg.RequireSourceLanguage {
		if _, ok := lang.ByPath(path); !ok {
			return false
		}
	}

	rel := filepath.ToSlash(path)
	if len(w.cfg.Globs) > 0 {
		matched := false
		for _, pattern := range w.cfg.Globs {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				matched = true
				break
			}
			if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range w.cfg.ExcludeGlobs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
			return false
		}
	}
	return true
}

func (w *Walker) shouldSkipDir(path string) bool {
	if w.gitignore != nil {
		if rel, err := filepath.Rel(".", path); err == nil && w.gitignore.MatchesPath(rel) {
			return true
		}
	}
	name := filepath.Base(path)
	for _, skip := range skipDirs {
		if name == skip {
			return true
		}
	}
	return strings.HasPrefix(name, ".")
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
