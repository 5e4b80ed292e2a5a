package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/tend/internal/cli"
	httpAdapter "github.com/aretw0/tend/pkg/adapters/http"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *cli.Options) *cobra.Command {
	var port string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves the REST API, Server-Sent Events (/events), the servers WebSocket
(/ws/servers), Prometheus metrics (/metrics) and the OpenAPI document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cfg, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger()

			server, err := httpAdapter.NewServer(cmd.Context(), app, httpAdapter.WithLogger(logger))
			if err != nil {
				return err
			}
			defer server.Close()

			addr := cfg.HTTP.Addr
			if port != "" {
				addr = ":" + port
			}
			srv := &http.Server{
				Addr:    addr,
				Handler: server.Handler(),
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("Starting tend server", "address", addr, "backend", cfg.Backend)
				fmt.Fprintf(cmd.OutOrStdout(), "Starting tend server on %s\n", addr)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case <-cmd.Context().Done():
				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("Graceful shutdown did not complete", "err", err)
					srv.Close()
				}
				fmt.Fprintln(cmd.OutOrStdout(), "tend server stopped gracefully")
				return nil
			}
		},
	}

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides http.addr)")
	return serveCmd
}
