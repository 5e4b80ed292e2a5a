package main

import (
	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/cli"
	"github.com/aretw0/tend/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &cli.Options{}

	rootCmd := &cobra.Command{
		Use:   "tend",
		Short: "tend keeps an ordered to-do list and a live servers counter",
		Long: `tend stores to-do items in memory, SQLite or Redis, always listing open items
first and newest first, and exposes them with a live servers counter over
HTTP, WebSocket, Server-Sent Events and MCP.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "Repository backend: memory, sqlite or redis")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newItemsCmd(opts),
		newServersCmd(),
		newShellCmd(opts),
		newDemoCmd(),
	)
	return rootCmd
}

// openApp loads the configuration and builds an App. Callers must Close it.
func openApp(cmd *cobra.Command, opts *cli.Options) (*tend.App, config.Config, error) {
	cfg, err := cli.LoadConfig(*opts)
	if err != nil {
		return nil, config.Config{}, err
	}
	app, err := cli.NewApp(cmd.Context(), cfg, cli.NewLogger(cfg))
	if err != nil {
		return nil, config.Config{}, err
	}
	return app, cfg, nil
}
