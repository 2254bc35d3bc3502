package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"page_structure/application/extractor"
	"page_structure/domain/entities"
	"page_structure/infrastructure/document"
	"page_structure/infrastructure/security"
)

type parseOptions struct {
	document.Options
	Extended bool
	Format   string // empty prints the whole pass result
}

func newParseCmd() *cobra.Command {
	var opts parseOptions
	cmd := &cobra.Command{
		Use:   "parse <file.html>",
		Short: "Run one extraction pass over a static HTML file",
		Long: `Run one extraction pass over a static HTML file without a browser.
Computed style and geometry come from inline style attributes only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return runParse(cmd.Context(), f, cmd.OutOrStdout(), opts, a.logger)
		},
	}
	cmd.Flags().Float64Var(&opts.Width, "width", 1280, "viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", 720, "viewport height")
	cmd.Flags().Float64Var(&opts.ScrollY, "scroll-y", 0, "vertical scroll offset")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "base URL for relative links")
	cmd.Flags().BoolVar(&opts.Extended, "extended", false, "extended context resolution")
	cmd.Flags().StringVar(&opts.Format, "tree", "", "print only the trimmed tree as json or html")
	return cmd
}

func runParse(ctx context.Context, r io.Reader, w io.Writer, opts parseOptions, logger *logrus.Logger) error {
	doc, err := document.ParseHTML(r, opts.Options)
	if err != nil {
		return err
	}
	result, err := extractor.New(logger, extractor.Options{Extended: opts.Extended}).Extract(ctx, doc)
	if err != nil {
		return err
	}

	if opts.Format != "" {
		trimmed := extractor.ExportTree(result.Forest)
		security.NewSecurityLayer(logger).Redact(trimmed)
		tree, err := extractor.RenderTree(trimmed, entities.TreeFormat(opts.Format))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, tree)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
