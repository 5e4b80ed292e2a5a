package main

import (
	"os"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/cli"
	"github.com/aretw0/tend/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newShellCmd(opts *cli.Options) *cobra.Command {
	var headless bool

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long:  `Reads one command per line (ls, add, done, undo, rm, servers, quit). Use --headless for scripted input.`,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *tend.App, args []string) error {
			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()
			interactive := !headless && tui.IsTerminal(os.Stdin) && tui.IsTerminal(out)

			runner := tend.NewRunner(in, out)
			runner.Headless = !interactive
			if interactive {
				tui.PrintBanner(out, tend.Version)
				runner.Renderer = tui.ItemsRendererFor(out)
			}
			return runner.Run(cmd.Context(), app)
		}),
	}

	shellCmd.Flags().BoolVar(&headless, "headless", false, "Disable prompts and banner")
	return shellCmd
}
