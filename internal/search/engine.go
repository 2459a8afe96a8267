// Package search implements the "search as a function" entry point used
// by the CLI and the HTTP API: text mode, and indexed/non-indexed symbol
// mode with DSL evaluation and context-snippet materialization.
package search

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/termfx/symgrep/internal/core"
	idx "github.com/termfx/symgrep/internal/index"
	"github.com/termfx/symgrep/internal/lang"
	"github.com/termfx/symgrep/internal/obs"
	"github.com/termfx/symgrep/internal/provider"
	"github.com/termfx/symgrep/internal/query"
	"github.com/termfx/symgrep/internal/walk"
)

// Run executes a search, dispatching to text or symbol mode per the
// resolved SearchConfig.
func Run(ctx context.Context, cfg core.SearchConfig) (core.SearchResult, error) {
	if strings.TrimSpace(cfg.Pattern) == "" {
		return core.SearchResult{}, core.Wrap(core.ErrKindInvalidInput, "search pattern must not be empty", core.ErrEmptyPattern)
	}

	expr := cfg.ParsedQuery
	if expr == nil {
		parsed, err := query.Parse(cfg.Pattern)
		if err != nil {
			return core.SearchResult{}, err
		}
		expr = parsed
	}

	mode := effectiveMode(cfg)
	if mode != core.ModeText {
		expr = query.WithLiteral(expr, cfg.Literal)
	}
	hasCallTerms := expr.HasCallGraphTerms()

	if cfg.ReindexOnSearch && mode == core.ModeSymbol && !hasCallTerms && cfg.Index != nil {
		effective := resolveEffectiveIndexConfig(cfg)
		if effective != nil {
			if _, err := idx.Run(ctx, *effective); err != nil {
				return core.SearchResult{}, err
			}
		}
	}

	switch mode {
	case core.ModeText:
		return runTextSearch(ctx, cfg, expr)
	default:
		if cfg.Index != nil && !hasCallTerms {
			return runSymbolSearchWithIndex(ctx, cfg, expr)
		}
		return runSymbolSearchWithoutIndex(ctx, cfg, expr)
	}
}

func effectiveMode(cfg core.SearchConfig) core.SearchMode {
	switch cfg.Mode {
	case core.ModeText, core.ModeSymbol:
		return cfg.Mode
	default:
		if cfg.Language != "" {
			if _, ok := lang.ByLanguage(cfg.Language); ok {
				return core.ModeSymbol
			}
		}
		return core.ModeText
	}
}

// resolveEffectiveIndexConfig implements the SQLite > file backend >
// non-indexed auto-selection heuristic, applied whenever the index config
// is the file backend rooted at .symgrep. That is what the CLI resolves
// when neither --index-backend nor --index-path is given, but an explicit
// "--index-backend file" or "--index-path .symgrep" resolves to the same
// config and also gets the heuristic.
func resolveEffectiveIndexConfig(cfg core.SearchConfig) *core.IndexConfig {
	if cfg.Index == nil {
		return nil
	}
	index := *cfg.Index
	const defaultRoot = ".symgrep"

	if index.Backend == core.IndexBackendFile && index.IndexPath == defaultRoot {
		sqlitePath := defaultRoot + "/index.sqlite"
		if st, err := os.Stat(sqlitePath); err == nil && !st.IsDir() {
			sqliteCfg := index
			sqliteCfg.Backend = core.IndexBackendSQLite
			sqliteCfg.IndexPath = sqlitePath
			return &sqliteCfg
		}
		if st, err := os.Stat(defaultRoot); err == nil && st.IsDir() {
			return &index
		}
		return nil
	}
	return &index
}

func isIdentifierChar(r byte) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// findLiteralIdentifier returns the first byte offset where needle occurs
// in haystack at an identifier word boundary, or -1.
func findLiteralIdentifier(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	searchStart := 0
	for {
		rel := strings.Index(haystack[searchStart:], needle)
		if rel < 0 {
			return -1
		}
		start := searchStart + rel
		end := start + len(needle)
		leftOK := start == 0 || !isIdentifierChar(haystack[start-1])
		rightOK := end >= len(haystack) || !isIdentifierChar(haystack[end])
		if leftOK && rightOK {
			return start
		}
		searchStart = end
	}
}

func exprIsTextOnly(expr *core.QueryExpr) bool {
	if expr.ContentOnly {
		return true
	}
	for _, group := range expr.Groups {
		for _, t := range group {
			if t.Field != core.FieldContent {
				return false
			}
		}
	}
	return true
}

// findInLine returns the first match column (0-based) for a text-only
// query expression within a single line, preferring the earliest
// alternative across OR groups and requiring every AND group to match.
func findInLine(expr *core.QueryExpr, line string, literal bool) (int, bool) {
	best := -1
	for _, group := range expr.Groups {
		groupBest := -1
		for _, t := range group {
			idx := findTermInLine(t, line, literal)
			if idx < 0 {
				continue
			}
			if groupBest < 0 || idx < groupBest {
				groupBest = idx
			}
		}
		if groupBest < 0 {
			return -1, false
		}
		if best < 0 || groupBest < best {
			best = groupBest
		}
	}
	return best, best >= 0
}

func findTermInLine(t core.QueryTerm, line string, literal bool) int {
	if t.Exact {
		if line == t.Value {
			return 0
		}
		return -1
	}
	if literal {
		return findLiteralIdentifier(line, t.Value)
	}
	return strings.Index(line, t.Value)
}

func runTextSearch(ctx context.Context, cfg core.SearchConfig, expr *core.QueryExpr) (core.SearchResult, error) {
	if len(cfg.Paths) == 0 {
		return core.SearchResult{}, core.Wrap(core.ErrKindInvalidInput, "at least one search path is required", core.ErrNoPaths)
	}
	walker := walk.New(walk.Config{Globs: cfg.Globs, ExcludeGlobs: cfg.ExcludeGlobs})
	files, err := allFiles(ctx, walker, cfg.Paths)
	if err != nil {
		return core.SearchResult{}, err
	}

	var textOnly *core.QueryExpr
	if exprIsTextOnly(expr) {
		textOnly = expr
	}

	log := core.EffectiveLogger(cfg.Logger)
	limit := effectiveLimit(cfg.Limit)
	var matches []core.SearchMatch
	var total uint64
	truncated := false

outer:
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		lineNo := uint32(0)
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()

			var column int
			var found bool
			switch {
			case textOnly != nil:
				column, found = findInLine(textOnly, line, cfg.Literal)
			case cfg.Literal:
				column = findLiteralIdentifier(line, cfg.Pattern)
				found = column >= 0
			default:
				column = strings.Index(line, cfg.Pattern)
				found = column >= 0
			}
			if !found {
				continue
			}

			total++
			if uint64(len(matches)) < limit {
				snippet := ""
				if cfg.MaxLines == nil || *cfg.MaxLines != 0 {
					snippet = line
				}
				matches = append(matches, core.SearchMatch{
					File: path, Line: lineNo, Column: uint32(column) + 1, Snippet: snippet,
				})
			}
			if uint64(len(matches)) >= limit {
				truncated = cfg.Limit != nil
				f.Close()
				break outer
			}
		}
		f.Close()
		select {
		case <-ctx.Done():
			return core.SearchResult{}, ctx.Err()
		default:
		}
	}

	return core.SearchResult{
		Version: core.SearchResultSchemaVersion,
		Query:   cfg.Pattern,
		Matches: matches,
		Summary: core.SearchSummary{TotalMatches: total, Truncated: truncated},
	}, nil
}

func allFiles(ctx context.Context, w *walk.Walker, paths []string) ([]string, error) {
	return w.Walk(ctx, paths)
}

func effectiveLimit(limit *uint64) uint64 {
	if limit == nil {
		return ^uint64(0)
	}
	return *limit
}

func primaryContextKind(views []core.SymbolView) (core.ContextKind, bool) {
	for _, v := range views {
		if v == core.ViewDef {
			return core.ContextDef, true
		}
	}
	for _, v := range views {
		if v == core.ViewDecl {
			return core.ContextDecl, true
		}
	}
	for _, v := range views {
		if v == core.ViewParent {
			return core.ContextParent, true
		}
	}
	return "", false
}

func viewsAreMetaOnly(views []core.SymbolView) bool {
	if len(views) == 0 {
		return false
	}
	for _, v := range views {
		if v != core.ViewMeta {
			return false
		}
	}
	return true
}

func wantMatches(views []core.SymbolView) bool {
	for _, v := range views {
		if v == core.ViewMatches {
			return true
		}
	}
	return false
}

// computeSymbolMatches anchors each content/comment/description term's
// first hit to a line in the materialized context snippet or, for
// comment/description, to the symbol's own attributes.
func computeSymbolMatches(expr *core.QueryExpr, sym core.Symbol, ctx *core.ContextInfo) []core.SymbolMatch {
	if expr == nil {
		return nil
	}
	var contentTerms, commentTerms, descTerms []core.QueryTerm
	for _, group := range expr.Groups {
		for _, t := range group {
			switch t.Field {
			case core.FieldContent:
				contentTerms = append(contentTerms, t)
			case core.FieldComment:
				commentTerms = append(commentTerms, t)
			case core.FieldDescription:
				descTerms = append(descTerms, t)
			}
		}
	}
	if expr.ContentOnly {
		contentTerms = expr.Groups[0]
	}

	var out []core.SymbolMatch
	if ctx != nil && len(contentTerms) > 0 {
		lines := strings.Split(ctx.Snippet, "\n")
		for _, t := range contentTerms {
			needle := t.Value
			if needle == "" {
				continue
			}
			for i, line := range lines {
				if col := strings.Index(line, needle); col >= 0 {
					lineNo := ctx.Range.StartLine + uint32(i)
					c := uint32(col) + 1
					out = append(out, core.SymbolMatch{Line: lineNo, Column: &c, Snippet: line})
					break
				}
			}
		}
	}

	if sym.Attributes != nil {
		if sym.Attributes.Comment != "" {
			for _, t := range commentTerms {
				if t.Value != "" && strings.Contains(sym.Attributes.Comment, t.Value) {
					out = append(out, core.SymbolMatch{Line: sym.Range.StartLine, Snippet: sym.Attributes.Comment})
					break
				}
			}
		}
		if sym.Attributes.Description != "" {
			for _, t := range descTerms {
				if t.Value != "" && strings.Contains(sym.Attributes.Description, t.Value) {
					out = append(out, core.SymbolMatch{Line: sym.Range.StartLine, Snippet: sym.Attributes.Description})
					break
				}
			}
		}
	}
	return out
}

func needsContext(expr *core.QueryExpr, hasContentTerms bool, primaryKind bool, wantMatchesFlag bool, viewsEmpty bool) bool {
	return hasContentTerms || primaryKind || (wantMatchesFlag && !viewsEmpty)
}

func runSymbolSearchWithoutIndex(ctx context.Context, cfg core.SearchConfig, expr *core.QueryExpr) (core.SearchResult, error) {
	if len(cfg.Paths) == 0 {
		return core.SearchResult{}, core.Wrap(core.ErrKindInvalidInput, "at least one search path is required", core.ErrNoPaths)
	}

	walker := walk.New(walk.Config{Globs: cfg.Globs, ExcludeGlobs: cfg.ExcludeGlobs, Language: cfg.Language, RequireSourceLanguage: true})
	files, err := walker.Walk(ctx, cfg.Paths)
	if err != nil {
		return core.SearchResult{}, core.IOErr("walking search paths", err)
	}

	hasContentTerms := expr.HasBodyTerms()
	primaryKind, hasPrimary := primaryContextKind(cfg.Views)
	wantsMatches := wantMatches(cfg.Views)
	metaOnly := viewsAreMetaOnly(cfg.Views)
	limit := effectiveLimit(cfg.Limit)
	log := core.EffectiveLogger(cfg.Logger)

	var symbols []core.Symbol
	var contexts []core.ContextInfo
	var total uint64
	truncated := false

outer:
	for _, path := range files {
		p, ok := lang.ByPath(path)
		if !ok {
			continue
		}
		source, err := os.ReadFile(path)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		parsed, err := p.Parse(path, source)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}
		indexed, err := p.IndexSymbols(parsed)
		if err != nil {
			obs.WarnSkippedFile(log, path, err)
			continue
		}

		for _, symbol := range indexed {
			if !query.MatchMetadata(expr, symbol) {
				continue
			}

			var contextForResult *core.ContextInfo
			if !metaOnly && needsContext(expr, hasContentTerms, hasPrimary, wantsMatches, len(cfg.Views) == 0) {
				kind := core.ContextDef
				if hasPrimary {
					kind = primaryKind
				}
				info, err := p.ContextSnippet(parsed, symbol, kind)
				if err != nil {
					return core.SearchResult{}, core.ParseErr("materializing context for "+symbol.Name+" in "+symbol.File, err)
				}
				if hasContentTerms && !query.MatchFull(expr, symbol, info.Snippet, true) {
					continue
				}
				contextForResult = &info
			} else if !query.MatchFull(expr, symbol, "", false) {
				continue
			}

			var symbolMatches []core.SymbolMatch
			if wantsMatches && !metaOnly {
				symbolMatches = computeSymbolMatches(expr, symbol, contextForResult)
			}

			total++
			if uint64(len(symbols)) < limit {
				idx := len(symbols)
				if contextForResult != nil {
					if contextForResult.Kind == core.ContextDef {
						lines := contextForResult.Range.EndLine - contextForResult.Range.StartLine + 1
						symbol.DefLineCount = &lines
					}
					contextForResult.SymbolIndex = &idx
					contexts = append(contexts, *contextForResult)
				}
				symbol.Matches = symbolMatches
				symbols = append(symbols, symbol)
			}
			if uint64(len(symbols)) >= limit {
				truncated = cfg.Limit != nil
				break outer
			}
		}
	}

	return core.SearchResult{
		Version: core.SearchResultSchemaVersion, Query: cfg.Pattern,
		Symbols: symbols, Contexts: contexts,
		Summary: core.SearchSummary{TotalMatches: total, Truncated: truncated},
	}, nil
}

func runSymbolSearchWithIndex(ctx context.Context, cfg core.SearchConfig, expr *core.QueryExpr) (core.SearchResult, error) {
	if len(cfg.Paths) == 0 {
		return core.SearchResult{}, core.Wrap(core.ErrKindInvalidInput, "at least one search path is required", core.ErrNoPaths)
	}

	indexCfg := resolveEffectiveIndexConfig(cfg)
	if indexCfg == nil {
		return runSymbolSearchWithoutIndex(ctx, cfg, expr)
	}

	backend, err := idx.Open(*indexCfg)
	if err != nil {
		return runSymbolSearchWithoutIndex(ctx, cfg, expr)
	}
	defer backend.Close()

	records, err := backend.QuerySymbols(core.SymbolQuery{
		Language: cfg.Language, Paths: cfg.Paths, Globs: cfg.Globs, ExcludeGlobs: cfg.ExcludeGlobs,
	})
	if err != nil {
		return core.SearchResult{}, err
	}
	if len(records) == 0 {
		return runSymbolSearchWithoutIndex(ctx, cfg, expr)
	}

	hasContentTerms := expr.HasBodyTerms()
	primaryKind, hasPrimary := primaryContextKind(cfg.Views)
	wantsMatches := wantMatches(cfg.Views)
	metaOnly := viewsAreMetaOnly(cfg.Views)
	limit := effectiveLimit(cfg.Limit)
	log := core.EffectiveLogger(cfg.Logger)

	parsedCache := map[string]*provider.ParsedFile{}

	var symbols []core.Symbol
	var contexts []core.ContextInfo
	var total uint64
	truncated := false

	for _, rec := range records {
		fileRec, err := backend.GetFileByID(rec.FileID)
		if err != nil || fileRec == nil {
			continue
		}

		symbol := core.Symbol{
			Name: rec.Name, Kind: rec.Kind, Language: rec.Language, File: fileRec.Path,
			Range: rec.Range, Signature: rec.Signature, Attributes: idx.AttributesFromExtra(rec.Extra),
		}

		if !query.MatchMetadata(expr, symbol) {
			continue
		}

		var contextForResult *core.ContextInfo
		if !metaOnly && needsContext(expr, hasContentTerms, hasPrimary, wantsMatches, len(cfg.Views) == 0) {
			parsed, ok := parsedCache[fileRec.Path]
			if !ok {
				p, pok := lang.ByPath(fileRec.Path)
				if cfg.Language != "" {
					p, pok = lang.ByLanguage(cfg.Language)
				}
				if !pok {
					continue
				}
				source, err := os.ReadFile(fileRec.Path)
				if err != nil {
					obs.WarnSkippedFile(log, fileRec.Path, err)
					continue
				}
				parsed, err = p.Parse(fileRec.Path, source)
				if err != nil {
					obs.WarnSkippedFile(log, fileRec.Path, err)
					continue
				}
				parsedCache[fileRec.Path] = parsed
			}

			p, pok := lang.ByLanguage(symbol.Language)
			if !pok {
				p, pok = lang.ByPath(symbol.File)
			}
			if !pok {
				continue
			}

			kind := core.ContextDef
			if hasPrimary {
				kind = primaryKind
			}
			info, err := p.ContextSnippet(parsed, symbol, kind)
			if err != nil {
				return core.SearchResult{}, core.ParseErr("materializing context for "+symbol.Name+" in "+symbol.File, err)
			}
			if hasContentTerms && !query.MatchFull(expr, symbol, info.Snippet, true) {
				continue
			}
			contextForResult = &info
		} else if !query.MatchFull(expr, symbol, "", false) {
			continue
		}

		var symbolMatches []core.SymbolMatch
		if wantsMatches && !metaOnly {
			symbolMatches = computeSymbolMatches(expr, symbol, contextForResult)
		}

		total++
		if uint64(len(symbols)) < limit {
			idx := len(symbols)
			if contextForResult != nil {
				if contextForResult.Kind == core.ContextDef {
					lines := contextForResult.Range.EndLine - contextForResult.Range.StartLine + 1
					symbol.DefLineCount = &lines
				}
				contextForResult.SymbolIndex = &idx
				contexts = append(contexts, *contextForResult)
			}
			symbol.Matches = symbolMatches
			symbols = append(symbols, symbol)
		}
		if uint64(len(symbols)) >= limit {
			truncated = cfg.Limit != nil
			break
		}
	}

	return core.SearchResult{
		Version: core.SearchResultSchemaVersion, Query: cfg.Pattern,
		Symbols: symbols, Contexts: contexts,
		Summary: core.SearchSummary{TotalMatches: total, Truncated: truncated},
	}, nil
}
