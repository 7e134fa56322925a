package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/msgtext/entdecode/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP decoding API",
	Long: `Run the HTTP API in the foreground.

Endpoints:
  GET  /health
  POST /api/v1/decode            JSON {"text": "..."} or raw text body
  GET  /api/v1/entities[?prefix=]
  GET  /api/v1/entities/{name}
  POST /api/v1/message           raw RFC 5322 message

Configure in config.toml:
  [server]
  api_port = 8080
  bind_addr = "127.0.0.1"
  api_key = ""          # required when binding beyond loopback

Use Ctrl+C to stop the server gracefully.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Validate security posture before doing any work
	if err := cfg.Server.ValidateSecure(); err != nil {
		return err
	}

	ctx := cmd.Context()
	apiServer := api.NewServer(cfg, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	bindAddr := cfg.Server.BindAddr
	if bindAddr == "" {
		bindAddr = "127.0.0.1"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "entdecode API started\n")
	fmt.Fprintf(out, "  Listening on: http://%s\n", net.JoinHostPort(bindAddr, strconv.Itoa(cfg.Server.APIPort)))
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		logger.Error("API server error", "error", err)
		runErr = fmt.Errorf("api server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	fmt.Fprintln(out, "Shutdown complete.")
	return runErr
}
