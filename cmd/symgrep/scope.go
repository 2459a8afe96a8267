package main

import "github.com/spf13/cobra"

// bindScopeFlags registers the --path/--glob/--exclude/--language flags
// shared by every subcommand that walks or queries a file tree.
func bindScopeFlags(cmd *cobra.Command, paths, globs, excludes *[]string, language *string) {
	cmd.Flags().StringSliceVarP(paths, "path", "p", nil, "paths to search or index (repeatable, defaults to \".\")")
	cmd.Flags().StringSliceVar(globs, "glob", nil, "inclusion globs applied to candidate files (repeatable)")
	cmd.Flags().StringSliceVar(excludes, "exclude", nil, "exclusion globs applied to candidate files (repeatable)")
	cmd.Flags().StringVar(language, "language", "", "restrict to a single language id")
}
