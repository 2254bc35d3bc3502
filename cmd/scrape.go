package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"page_structure/application/extractor"
	"page_structure/domain/entities"
)

func newScrapeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape one page and print its trimmed element tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.scraper.Scrape(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f := a.treeFormat()
			if format != "" {
				f = entities.TreeFormat(format)
			}
			tree, err := extractor.RenderTree(page.ElementTreeTrimmed, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "tree format: json or html (default TREE_FORMAT)")
	return cmd
}
