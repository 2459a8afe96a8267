package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/termfx/symgrep/internal/httpapi"
	"github.com/termfx/symgrep/internal/obs"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the symgrep HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7878", "address to bind the HTTP server to")
}

func runServe(cmd *cobra.Command, args []string) error {
	if sec := projectConfig.ServeSection(); sec != nil {
		applyStringDefault(cmd, "addr", &serveAddr, sec.Addr)
	}

	log := obs.New(false)
	server := httpapi.NewServer(log)

	log.WithField("addr", serveAddr).Info("symgrep server listening")
	if err := http.ListenAndServe(serveAddr, server.Handler()); err != nil {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}
