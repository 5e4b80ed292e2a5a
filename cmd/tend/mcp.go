package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tend/internal/cli"
	"github.com/aretw0/tend/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *cli.Options) *cobra.Command {
	var (
		transport string
		port      int
	)

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the to-do list and the servers counter as MCP tools and resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger()

			srv := mcp.NewServer(app, mcp.WithLogger(logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				logger.Info("Starting tend MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				addr := fmt.Sprintf(":%d", port)
				return srv.ServeSSE(cmd.Context(), addr, fmt.Sprintf("http://localhost:%d", port))
			default:
				return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
			}
		},
	}

	mcpCmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().IntVar(&port, "port", 8081, "Port to listen on (only for SSE)")
	return mcpCmd
}
