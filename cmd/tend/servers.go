package main

import (
	"fmt"
	"strconv"

	httpAdapter "github.com/aretw0/tend/pkg/adapters/http"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

func newServersCmd() *cobra.Command {
	var url string

	serversCmd := &cobra.Command{
		Use:   "servers",
		Short: "Read, set or watch the servers counter of a running tend server",
	}
	serversCmd.PersistentFlags().StringVar(&url, "url", defaultServerURL, "Base URL of the tend server")

	printStatus := func(cmd *cobra.Command, s domain.ServerStatus) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d online\n", s.Region, s.Online)
	}

	serversCmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the servers counter",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := httpAdapter.NewClient(url).Servers(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd, status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <n>",
			Short: "Set the servers counter and notify every observer",
			Long:  `Sets the counter to n. Any integer is accepted; pass negative values after "--".`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid servers count %q", args[0])
				}
				status, err := httpAdapter.NewClient(url).SetServers(cmd.Context(), n)
				if err != nil {
					return err
				}
				printStatus(cmd, status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Print the servers counter on every change until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return httpAdapter.NewClient(url).WatchServers(cmd.Context(), func(s domain.ServerStatus) {
					printStatus(cmd, s)
				})
			},
		},
	)
	return serversCmd
}
