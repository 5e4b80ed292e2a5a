package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/cli"
	"github.com/aretw0/tend/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newItemsCmd(opts *cli.Options) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"todo"},
		Short:   "Manage to-do items in the configured backend",
	}

	itemsCmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List items, open ones first and newest first",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
				return printItems(cmd, app)
			}),
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add an item; its ID is assigned automatically",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
				item, err := app.Tasks().Add(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", item)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "done <id>",
			Short: "Mark an item as completed",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				item, err := app.Tasks().Complete(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", item)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "undo <id>",
			Short: "Mark an item as not completed",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				item, err := app.Tasks().Reopen(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reopened %s\n", item)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete an item; its ID is never reused",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := app.Tasks().Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", id)
				return nil
			}),
		},
	)
	return itemsCmd
}

// withApp opens the App for the duration of fn.
func withApp(opts *cli.Options, fn func(cmd *cobra.Command, app *tend.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, _, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(cmd, app, args)
	}
}

func printItems(cmd *cobra.Command, app *tend.App) error {
	items, err := app.Tasks().Items(cmd.Context())
	if err != nil {
		return err
	}
	return cli.PrintItems(cmd.OutOrStdout(), items, tui.ItemsRendererFor(cmd.OutOrStdout()))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}
