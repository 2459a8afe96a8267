package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/index"
	"github.com/termfx/symgrep/internal/obs"
	"github.com/termfx/symgrep/internal/query"
)

var (
	annotateName         string
	annotateKind         string
	annotateLanguage     string
	annotateStartLine    uint32
	annotateEndLine      uint32
	annotateKeywords     []string
	annotateDescription  string
	annotateIndexBackend string
	annotateIndexPath    string
	annotateServer       string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Replace a symbol's externally managed keywords and description",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().StringVar(&annotateName, "name", "", "symbol name (required)")
	annotateCmd.Flags().StringVar(&annotateKind, "kind", "", "symbol kind: function, method, class, interface, variable, namespace (required)")
	annotateCmd.Flags().StringVar(&annotateLanguage, "language", "", "symbol language id (required)")
	annotateCmd.Flags().Uint32Var(&annotateStartLine, "start-line", 0, "symbol's start line (required)")
	annotateCmd.Flags().Uint32Var(&annotateEndLine, "end-line", 0, "symbol's end line (required)")
	annotateCmd.Flags().StringSliceVar(&annotateKeywords, "keyword", nil, "keyword to attach (repeatable); replaces the existing keyword set")
	annotateCmd.Flags().StringVar(&annotateDescription, "description", "", "description to attach; replaces the existing description")
	annotateCmd.Flags().StringVar(&annotateIndexBackend, "index-backend", "", "index backend: file or sqlite")
	annotateCmd.Flags().StringVar(&annotateIndexPath, "index-path", "", "path to the index")
	annotateCmd.Flags().StringVar(&annotateServer, "server", os.Getenv("SYMGREP_SERVER_URL"), "delegate to a running symgrep server instead of writing locally")
	_ = annotateCmd.MarkFlagRequired("name")
	_ = annotateCmd.MarkFlagRequired("kind")
	_ = annotateCmd.MarkFlagRequired("language")
	_ = annotateCmd.MarkFlagRequired("start-line")
	_ = annotateCmd.MarkFlagRequired("end-line")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	file := args[0]

	kind, ok := query.ParseSymbolKind(annotateKind)
	if !ok {
		return core.Invalid("unknown symbol kind %q", annotateKind)
	}

	selector := core.SymbolSelector{
		File: file, Name: annotateName, Kind: kind, Language: annotateLanguage,
		StartLine: annotateStartLine, EndLine: annotateEndLine,
	}
	update := core.SymbolAttributesUpdate{Keywords: annotateKeywords, Description: annotateDescription}

	backend, path := resolveBackend(annotateIndexBackend, cmd.Flags().Changed("index-backend"), annotateIndexPath, cmd.Flags().Changed("index-path"))
	indexCfg := core.IndexConfig{Backend: backend, IndexPath: path}

	ctx := context.Background()

	if annotateServer != "" {
		client := newHTTPBackend(annotateServer)
		resp, err := client.symbolAttributes(ctx, core.SymbolAttributesRequest{Index: indexCfg, Selector: selector, Update: update})
		if err != nil {
			return err
		}
		return printSymbolAttributes(resp.Symbol, formatText)
	}

	indexCfg.Logger = obs.New(false)
	symbol, err := index.ApplyAttributes(indexCfg, selector, update)
	if err != nil {
		return err
	}
	return printSymbolAttributes(symbol, formatText)
}
