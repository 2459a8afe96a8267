package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/lang"
	"github.com/termfx/symgrep/internal/obs"
	"github.com/termfx/symgrep/internal/walk"
)

// Run opens the configured backend and performs an incremental index
// build, creating or updating on-disk records for changed files and
// removing records for files no longer present.
func Run(ctx context.Context, cfg core.IndexConfig) (core.IndexSummary, error) {
	backend, err := Open(cfg)
	if err != nil {
		return core.IndexSummary{}, err
	}
	defer backend.Close()
	return Build(ctx, backend, cfg)
}

// Info opens the configured backend read-only and reports aggregate
// counts without mutating the index.
func Info(cfg core.IndexConfig) (core.IndexSummary, error) {
	switch cfg.Backend {
	case core.IndexBackendSQLite:
		if st, err := os.Stat(cfg.IndexPath); err != nil || st.IsDir() {
			return core.IndexSummary{}, core.Wrap(core.ErrKindIO, "index not found at "+cfg.IndexPath, core.ErrIndexNotFound)
		}
	default:
		if st, err := os.Stat(cfg.IndexPath); err != nil || !st.IsDir() {
			return core.IndexSummary{}, core.Wrap(core.ErrKindIO, "index not found at "+cfg.IndexPath, core.ErrIndexNotFound)
		}
	}

	backend, err := Open(cfg)
	if err != nil {
		return core.IndexSummary{}, err
	}
	defer backend.Close()

	meta, err := backend.LoadMeta()
	if err != nil {
		return core.IndexSummary{}, err
	}
	files, err := backend.ListFiles()
	if err != nil {
		return core.IndexSummary{}, err
	}
	symbols, err := backend.QuerySymbols(core.SymbolQuery{})
	if err != nil {
		return core.IndexSummary{}, err
	}

	return core.IndexSummary{
		Backend:        backend.Kind(),
		IndexPath:      cfg.IndexPath,
		FilesIndexed:   uint64(len(files)),
		SymbolsIndexed: uint64(len(symbols)),
		RootPath:       meta.RootPath,
		SchemaVersion:  meta.SchemaVersion,
		ToolVersion:    meta.ToolVersion,
		CreatedAt:      formatTimestamp(meta.CreatedAt),
		UpdatedAt:      formatTimestamp(meta.UpdatedAt),
		IndexID:        meta.ID,
	}, nil
}

// Build performs the core incremental indexing routine against an
// already-open backend; shared by Run and by reindex-on-search.
func Build(ctx context.Context, backend Backend, cfg core.IndexConfig) (core.IndexSummary, error) {
	if len(cfg.Paths) == 0 {
		return core.IndexSummary{}, core.Invalid("at least one index path is required")
	}
	for _, p := range cfg.Paths {
		if _, err := os.Stat(p); err != nil {
			return core.IndexSummary{}, core.Wrap(core.ErrKindInvalidInput, "index path does not exist: "+p, core.ErrPathNotFound)
		}
	}

	canonicalRoot, err := filepath.Abs(cfg.Paths[0])
	if err != nil {
		canonicalRoot = cfg.Paths[0]
	}
	if resolved, err := filepath.EvalSymlinks(canonicalRoot); err == nil {
		canonicalRoot = resolved
	}

	meta, err := backend.LoadMeta()
	if err != nil {
		return core.IndexSummary{}, err
	}
	if meta.RootPath == "" {
		meta.RootPath = canonicalRoot
		meta.ID = uuid.NewString()
	} else if storedRoot, err := filepath.EvalSymlinks(meta.RootPath); err == nil && storedRoot != canonicalRoot {
		return core.IndexSummary{}, core.Wrap(core.ErrKindConsistency,
			"index root_path mismatch: index was created with root "+storedRoot+", but "+canonicalRoot+" was requested", core.ErrRootMismatch)
	}

	existingFiles, err := backend.ListFiles()
	if err != nil {
		return core.IndexSummary{}, err
	}
	existingByPath := make(map[string]core.FileRecord, len(existingFiles))
	for _, f := range existingFiles {
		existingByPath[f.Path] = f
	}
	seen := make(map[string]bool)

	walker := walk.New(walk.Config{Globs: cfg.Globs, ExcludeGlobs: cfg.ExcludeGlobs, Language: cfg.Language, RequireSourceLanguage: true})
	files, err := walker.Walk(ctx, cfg.Paths)
	if err != nil {
		return core.IndexSummary{}, core.IOErr("walking index paths", err)
	}

	log := core.EffectiveLogger(cfg.Logger)
	var filesIndexed, symbolsIndexed uint64
	for _, path := range files {
		select {
		case <-ctx.Done():
			return core.IndexSummary{}, ctx.Err()
		default:
		}

		provider, ok := lang.ByPath(path)
		if !ok {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		mtime := info.ModTime().Unix()
		size := info.Size()

		seen[path] = true
		if existing, ok := existingByPath[path]; ok {
			if existing.Mtime == mtime && existing.Size == size {
				continue
			}
		}

		source, err := os.ReadFile(path)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		parsed, err := provider.Parse(path, source)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		symbols, err := provider.IndexSymbols(parsed)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}

		var priorRecords []core.SymbolRecord
		if _, existed := existingByPath[path]; existed {
			priorRecords, err = backend.QuerySymbols(core.SymbolQuery{Paths: []string{path}})
			if err != nil {
				return core.IndexSummary{}, err
			}
		}

		rec, err := backend.UpsertFile(path, provider.Lang(), "", mtime, size)
		if err != nil {
			return core.IndexSummary{}, err
		}
		existingByPath[rec.Path] = rec

		newRecords := make([]core.NewSymbolRecord, 0, len(symbols))
		for _, s := range symbols {
			newRecords = append(newRecords, core.NewSymbolRecord{
				FileID: rec.ID, Name: s.Name, Kind: s.Kind, Language: s.Language,
				Range: s.Range, Signature: s.Signature, Extra: matchingExtra(priorRecords, path, s),
			})
		}
		if err := backend.SetFileSymbols(rec.ID, newRecords); err != nil {
			return core.IndexSummary{}, err
		}

		filesIndexed++
		symbolsIndexed += uint64(len(newRecords))
	}

	for _, f := range existingFiles {
		if !seen[f.Path] && pathWithinAny(f.Path, cfg.Paths) {
			if err := backend.RemoveFileByPath(f.Path); err != nil {
				return core.IndexSummary{}, err
			}
		}
	}

	meta.UpdatedAt = time.Now().Unix()
	if err := backend.SaveMeta(meta); err != nil {
		return core.IndexSummary{}, err
	}

	return core.IndexSummary{
		Backend: backend.Kind(), IndexPath: cfg.IndexPath,
		FilesIndexed: filesIndexed, SymbolsIndexed: symbolsIndexed,
		RootPath: meta.RootPath, SchemaVersion: meta.SchemaVersion, ToolVersion: meta.ToolVersion,
		CreatedAt: formatTimestamp(meta.CreatedAt), UpdatedAt: formatTimestamp(meta.UpdatedAt),
		IndexID: meta.ID,
	}, nil
}

// matchingExtra carries a prior symbol record's Extra payload (persisted
// attributes: keywords/description) forward onto a freshly parsed symbol
// that identifies the same logical symbol, per core.SymbolSelector.Matches
// (file/name/kind/language exact, start/end line within one line of drift).
// Without this, every reindex of a changed file would silently wipe
// attributes set through the attributes endpoint.
func matchingExtra(prior []core.SymbolRecord, path string, s core.Symbol) string {
	candidate := core.SymbolSelector{
		File: path, Name: s.Name, Kind: s.Kind, Language: s.Language,
		StartLine: s.Range.StartLine, EndLine: s.Range.EndLine,
	}
	for _, old := range prior {
		if old.Extra == "" {
			continue
		}
		existing := core.SymbolSelector{
			File: path, Name: old.Name, Kind: old.Kind, Language: old.Language,
			StartLine: old.Range.StartLine, EndLine: old.Range.EndLine,
		}
		if candidate.Matches(existing) {
			return old.Extra
		}
	}
	return ""
}

func pathWithinAny(path string, roots []string) bool {
	for _, root := range roots {
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func formatTimestamp(secs int64) string {
	if secs == 0 {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format(time.RFC3339)
}
