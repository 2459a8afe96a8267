package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/obs"
	"github.com/termfx/symgrep/internal/search"
)

var (
	searchPaths        []string
	searchGlobs        []string
	searchExcludes     []string
	searchLanguage     string
	searchMode         string
	searchLiteral      bool
	searchContext      string
	searchViews        []string
	searchLimit        uint64
	searchMaxLines     uint64
	searchFormat       string
	searchUseIndex     bool
	searchIndexBackend string
	searchIndexPath    string
	searchServer       string
	searchNoServer     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search source files by text or by structured symbol query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	bindScopeFlags(searchCmd, &searchPaths, &searchGlobs, &searchExcludes, &searchLanguage)
	searchCmd.Flags().StringVar(&searchMode, "mode", "auto", "search mode: text, symbol, or auto")
	searchCmd.Flags().BoolVar(&searchLiteral, "literal", false, "match whole identifiers only (word-boundary match)")
	searchCmd.Flags().StringVar(&searchContext, "context", "", "context kind to materialize: decl, def, or parent")
	searchCmd.Flags().StringSliceVar(&searchViews, "view", nil, "comma-separated views: meta,decl,def,parent,comment,matches")
	searchCmd.Flags().Uint64Var(&searchLimit, "limit", 0, "maximum number of results")
	searchCmd.Flags().Uint64Var(&searchMaxLines, "max-lines", 0, "0 omits the line snippet from text-mode matches; context snippets are not truncated")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "output format: text, table, or json")
	searchCmd.Flags().BoolVar(&searchUseIndex, "use-index", false, "use a persistent index for symbol search")
	searchCmd.Flags().StringVar(&searchIndexBackend, "index-backend", "", "index backend: file or sqlite")
	searchCmd.Flags().StringVar(&searchIndexPath, "index-path", "", "path to the index")
	searchCmd.Flags().StringVar(&searchServer, "server", os.Getenv("SYMGREP_SERVER_URL"), "delegate to a running symgrep server instead of searching locally")
	searchCmd.Flags().BoolVar(&searchNoServer, "no-server", false, "force local execution even if a server is configured")
}

func runSearch(cmd *cobra.Command, args []string) error {
	pattern := args[0]

	if sec := projectConfig.SearchSection(); sec != nil {
		applyStringSliceDefault(cmd, "path", &searchPaths, sec.Paths)
		applyStringSliceDefault(cmd, "glob", &searchGlobs, sec.Globs)
		applyStringSliceDefault(cmd, "exclude", &searchExcludes, sec.ExcludeGlobs)
		applyStringDefault(cmd, "language", &searchLanguage, sec.Language)
		applyBoolDefault(cmd, "literal", &searchLiteral, sec.Literal)
		applyStringDefault(cmd, "mode", &searchMode, sec.Mode)
		applyStringDefault(cmd, "context", &searchContext, sec.Context)
		if sec.Limit != nil && !cmd.Flags().Changed("limit") {
			searchLimit = *sec.Limit
		}
		if sec.MaxLines != nil && !cmd.Flags().Changed("max-lines") {
			searchMaxLines = *sec.MaxLines
		}
		applyBoolDefault(cmd, "use-index", &searchUseIndex, sec.UseIndex)
		applyStringDefault(cmd, "index-backend", &searchIndexBackend, sec.IndexBackend)
		applyStringDefault(cmd, "index-path", &searchIndexPath, sec.IndexPath)
		applyStringDefault(cmd, "format", &searchFormat, sec.Format)
		applyBoolDefault(cmd, "no-server", &searchNoServer, sec.NoServer)
		searchServer = resolveServerURL(cmd, searchServer, sec.Server)
	} else {
		searchServer = resolveServerURL(cmd, searchServer, "")
	}

	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}

	views, err := parseViews(searchViews)
	if err != nil {
		return err
	}
	views = applyContextFlag(searchContext, views)

	format := outputFormat(searchFormat)
	cfg := core.SearchConfig{
		Pattern:      pattern,
		Paths:        searchPaths,
		Globs:        searchGlobs,
		ExcludeGlobs: searchExcludes,
		Language:     searchLanguage,
		Mode:         core.SearchMode(searchMode),
		Literal:      searchLiteral,
		Views:        views,
		UseIndex:     searchUseIndex,
	}
	if searchLimit > 0 {
		cfg.Limit = &searchLimit
	}
	if searchMaxLines > 0 || cmd.Flags().Changed("max-lines") {
		cfg.MaxLines = &searchMaxLines
	}
	if searchUseIndex {
		backend, path := resolveBackend(searchIndexBackend, cmd.Flags().Changed("index-backend"), searchIndexPath, cmd.Flags().Changed("index-path"))
		cfg.Index = &core.IndexConfig{
			Paths: searchPaths, Globs: searchGlobs, ExcludeGlobs: searchExcludes,
			Language: searchLanguage, Backend: backend, IndexPath: path,
		}
	}

	ctx := context.Background()

	if searchServer != "" && !searchNoServer {
		cfg.Logger = obs.New(format == formatJSON)
		backend := newHTTPBackend(searchServer)
		result, err := backend.search(ctx, cfg)
		if err != nil {
			return err
		}
		return printSearchResult(result, format)
	}

	log := obs.New(format == formatJSON)
	cfg.Logger = log
	if cfg.Index != nil {
		cfg.Index.Logger = log
	}

	result, err := search.Run(ctx, cfg)
	if err != nil {
		return err
	}
	return printSearchResult(result, format)
}

func parseViews(raw []string) ([]core.SymbolView, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	views := make([]core.SymbolView, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		switch core.SymbolView(v) {
		case core.ViewMeta, core.ViewDecl, core.ViewDef, core.ViewParent, core.ViewComment, core.ViewMatches:
			views = append(views, core.SymbolView(v))
		default:
			return nil, core.Invalid("unknown view %q", v)
		}
	}
	return views, nil
}

// applyContextFlag folds the legacy --context selector into the view set:
// decl/def/parent behave as if that view had also been requested via
// --view. A bare line-count value is accepted for forward compatibility
// with grep-style numeric context but does not currently alter view
// selection (no core view consumes it).
func applyContextFlag(context string, views []core.SymbolView) []core.SymbolView {
	switch strings.ToLower(strings.TrimSpace(context)) {
	case "decl":
		return appendViewIfMissing(views, core.ViewDecl)
	case "def":
		return appendViewIfMissing(views, core.ViewDef)
	case "parent":
		return appendViewIfMissing(views, core.ViewParent)
	default:
		return views
	}
}

func appendViewIfMissing(views []core.SymbolView, v core.SymbolView) []core.SymbolView {
	for _, existing := range views {
		if existing == v {
			return views
		}
	}
	return append(views, v)
}

