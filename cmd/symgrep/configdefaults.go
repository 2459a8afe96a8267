package main

import "github.com/spf13/cobra"

// applyStringDefault overwrites *dst with val when the flag named name was
// not explicitly set on the invocation and val is non-empty.
func applyStringDefault(cmd *cobra.Command, name string, dst *string, val string) {
	if val == "" || cmd.Flags().Changed(name) {
		return
	}
	*dst = val
}

func applyBoolDefault(cmd *cobra.Command, name string, dst *bool, val bool) {
	if !val || cmd.Flags().Changed(name) {
		return
	}
	*dst = val
}

func applyStringSliceDefault(cmd *cobra.Command, name string, dst *[]string, val []string) {
	if len(val) == 0 || cmd.Flags().Changed(name) {
		return
	}
	*dst = val
}

// resolveServerURL applies explicitly set CLI flag > command config section
// server > flag default (SYMGREP_SERVER_URL) > global [http].server_url
// config fallback, in that precedence order.
func resolveServerURL(cmd *cobra.Command, flagVal string, sectionVal string) string {
	if cmd.Flags().Changed("server") && flagVal != "" {
		return flagVal
	}
	if sectionVal != "" {
		return sectionVal
	}
	if flagVal != "" {
		return flagVal
	}
	if projectConfig != nil {
		return projectConfig.ServerURL()
	}
	return ""
}
