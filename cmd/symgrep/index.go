package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/index"
	"github.com/termfx/symgrep/internal/obs"
)

var (
	indexPaths        []string
	indexGlobs        []string
	indexExcludes     []string
	indexLanguage     string
	indexBackendFlag  string
	indexPathFlag     string
	indexServer       string
	indexNoServer     bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update a persistent symbol index",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	bindScopeFlags(indexCmd, &indexPaths, &indexGlobs, &indexExcludes, &indexLanguage)
	indexCmd.Flags().StringVar(&indexBackendFlag, "index-backend", "", "index backend: file or sqlite")
	indexCmd.Flags().StringVar(&indexPathFlag, "index-path", "", "path to the index")
	indexCmd.Flags().StringVar(&indexServer, "server", os.Getenv("SYMGREP_SERVER_URL"), "delegate to a running symgrep server instead of indexing locally")
	indexCmd.Flags().BoolVar(&indexNoServer, "no-server", false, "force local execution even if a server is configured")
}

func runIndex(cmd *cobra.Command, args []string) error {
	if sec := projectConfig.IndexSection(); sec != nil {
		applyStringSliceDefault(cmd, "path", &indexPaths, sec.Paths)
		applyStringSliceDefault(cmd, "glob", &indexGlobs, sec.Globs)
		applyStringSliceDefault(cmd, "exclude", &indexExcludes, sec.ExcludeGlobs)
		applyStringDefault(cmd, "language", &indexLanguage, sec.Language)
		applyStringDefault(cmd, "index-backend", &indexBackendFlag, sec.Backend)
		applyStringDefault(cmd, "index-path", &indexPathFlag, sec.IndexPath)
		applyBoolDefault(cmd, "no-server", &indexNoServer, sec.NoServer)
		indexServer = resolveServerURL(cmd, indexServer, sec.Server)
	} else {
		indexServer = resolveServerURL(cmd, indexServer, "")
	}

	if len(indexPaths) == 0 {
		indexPaths = []string{"."}
	}

	backend, path := resolveBackend(indexBackendFlag, cmd.Flags().Changed("index-backend"), indexPathFlag, cmd.Flags().Changed("index-path"))
	cfg := core.IndexConfig{
		Paths: indexPaths, Globs: indexGlobs, ExcludeGlobs: indexExcludes,
		Language: indexLanguage, Backend: backend, IndexPath: path,
	}

	ctx := context.Background()

	if indexServer != "" && !indexNoServer {
		cfg.Logger = obs.New(false)
		client := newHTTPBackend(indexServer)
		summary, err := client.index(ctx, cfg)
		if err != nil {
			return err
		}
		return printIndexSummary(summary, formatText)
	}

	cfg.Logger = obs.New(false)
	summary, err := index.Run(ctx, cfg)
	if err != nil {
		return err
	}
	return printIndexSummary(summary, formatText)
}
