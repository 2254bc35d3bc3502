package cmd

import (
	"github.com/spf13/cobra"

	"page_structure/presentation/terminal"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Scrape URLs typed at a prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			term := terminal.NewTerminalInterface(a.scraper, a.treeFormat(), cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
			return term.Run(cmd.Context())
		},
	}
}
