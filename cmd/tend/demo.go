package main

import (
	"github.com/aretw0/tend/internal/cli"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the store and list behaviour on a throwaway in-memory App",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunDemo(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
