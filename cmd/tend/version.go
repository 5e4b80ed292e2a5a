package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tend"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tend",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tend version %s\n", strings.TrimSpace(tend.Version))
		},
	}
}
