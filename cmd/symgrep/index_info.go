package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/index"
)

var (
	infoPaths        []string
	infoGlobs        []string
	infoExcludes     []string
	infoLanguage     string
	infoBackendFlag  string
	infoPathFlag     string
	infoFormat       string
	infoServer       string
	infoNoServer     bool
)

var indexInfoCmd = &cobra.Command{
	Use:   "index-info",
	Short: "Report summary statistics for an existing index without mutating it",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

func init() {
	rootCmd.AddCommand(indexInfoCmd)
	bindScopeFlags(indexInfoCmd, &infoPaths, &infoGlobs, &infoExcludes, &infoLanguage)
	indexInfoCmd.Flags().StringVar(&infoBackendFlag, "index-backend", "", "index backend: file or sqlite")
	indexInfoCmd.Flags().StringVar(&infoPathFlag, "index-path", "", "path to the index")
	indexInfoCmd.Flags().StringVar(&infoFormat, "format", "text", "output format: text, table, or json")
	indexInfoCmd.Flags().StringVar(&infoServer, "server", os.Getenv("SYMGREP_SERVER_URL"), "delegate to a running symgrep server instead of reading locally")
	indexInfoCmd.Flags().BoolVar(&infoNoServer, "no-server", false, "force local execution even if a server is configured")
}

func runIndexInfo(cmd *cobra.Command, args []string) error {
	if sec := projectConfig.IndexInfoSection(); sec != nil {
		applyStringSliceDefault(cmd, "path", &infoPaths, sec.Paths)
		applyStringSliceDefault(cmd, "glob", &infoGlobs, sec.Globs)
		applyStringSliceDefault(cmd, "exclude", &infoExcludes, sec.ExcludeGlobs)
		applyStringDefault(cmd, "language", &infoLanguage, sec.Language)
		applyStringDefault(cmd, "index-backend", &infoBackendFlag, sec.Backend)
		applyStringDefault(cmd, "index-path", &infoPathFlag, sec.IndexPath)
		applyStringDefault(cmd, "format", &infoFormat, sec.Format)
		applyBoolDefault(cmd, "no-server", &infoNoServer, sec.NoServer)
		infoServer = resolveServerURL(cmd, infoServer, sec.Server)
	} else {
		infoServer = resolveServerURL(cmd, infoServer, "")
	}

	backend, path := resolveBackend(infoBackendFlag, cmd.Flags().Changed("index-backend"), infoPathFlag, cmd.Flags().Changed("index-path"))
	cfg := core.IndexConfig{
		Paths: infoPaths, Globs: infoGlobs, ExcludeGlobs: infoExcludes,
		Language: infoLanguage, Backend: backend, IndexPath: path,
	}

	format := outputFormat(infoFormat)
	ctx := context.Background()

	if infoServer != "" && !infoNoServer {
		client := newHTTPBackend(infoServer)
		summary, err := client.indexInfo(ctx, cfg)
		if err != nil {
			return err
		}
		return printIndexSummary(summary, format)
	}

	summary, err := index.Info(cfg)
	if err != nil {
		return err
	}
	return printIndexSummary(summary, format)
}
