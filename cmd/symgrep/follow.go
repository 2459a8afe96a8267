package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/obs"
	"github.com/termfx/symgrep/internal/view"
)

var (
	followPaths     []string
	followGlobs     []string
	followExcludes  []string
	followLanguage  string
	followDirection string
	followFormat    string
)

var followCmd = &cobra.Command{
	Use:   "follow <pattern>",
	Short: "Project the caller/callee call graph for symbols matching a query",
	Long: `follow always runs a fresh, non-indexed symbol search before projecting
call edges, since call graphs go stale the moment an index ages.`,
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)
	bindScopeFlags(followCmd, &followPaths, &followGlobs, &followExcludes, &followLanguage)
	followCmd.Flags().StringVar(&followDirection, "direction", "both", "callers, callees, or both")
	followCmd.Flags().StringVar(&followFormat, "format", "text", "output format: text or json")
}

func runFollow(cmd *cobra.Command, args []string) error {
	pattern := args[0]

	if len(followPaths) == 0 {
		followPaths = []string{"."}
	}

	direction := core.FollowDirection(followDirection)
	switch direction {
	case core.FollowCallers, core.FollowCallees, core.FollowBoth:
	default:
		return core.Invalid("unknown follow direction %q", followDirection)
	}

	format := outputFormat(followFormat)
	cfg := core.SearchConfig{
		Pattern: pattern, Paths: followPaths, Globs: followGlobs, ExcludeGlobs: followExcludes,
		Language: followLanguage, Mode: core.ModeSymbol,
		Logger: obs.New(format == formatJSON),
	}

	result, err := view.RunFollow(context.Background(), cfg, direction)
	if err != nil {
		return err
	}
	return printFollowResult(result, format)
}
