package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/config"
	"github.com/termfx/symgrep/internal/core"
)

var schemaVersionFlag bool

var rootCmd = &cobra.Command{
	Use:   "symgrep",
	Short: "symgrep is a language-aware code search and symbol-navigation engine",
	Long: `symgrep searches source trees by text or by structured symbol query,
materializes declaration/definition/parent context for matched symbols, and
projects a symbol's call graph for interactive navigation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if schemaVersionFlag {
			fmt.Println(core.SearchResultSchemaVersion)
			os.Exit(0)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		projectConfig = cfg
		return nil
	},
}

// projectConfig is the discovered .symgrep/config.toml, or nil when none
// was found. Each subcommand applies its section as defaults for flags the
// invocation left unset.
var projectConfig *config.CliConfig

func init() {
	rootCmd.PersistentFlags().BoolVar(&schemaVersionFlag, "schema-version", false, "print the SearchResult schema version and exit")
}
