package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"page_structure/application/extractor"
	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

type TerminalInterface struct {
	scraper interfaces.PageScraper
	format  entities.TreeFormat
	logger  *logrus.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewTerminalInterface(scraper interfaces.PageScraper, format entities.TreeFormat, in io.Reader, out io.Writer, logger *logrus.Logger) *TerminalInterface {
	return &TerminalInterface{
		scraper: scraper,
		format:  format,
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run reads URLs line by line and prints the trimmed element tree of each
func (t *TerminalInterface) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "Page Structure Scraper")
	fmt.Fprintln(t.out, "======================")
	fmt.Fprintln(t.out, "Enter a URL to scrape, or 'quit' to exit")
	fmt.Fprintln(t.out)

	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(input) == "") {
			if err == io.EOF {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "quit" || input == "exit" || input == "q" {
			fmt.Fprintln(t.out, "Goodbye!")
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(t.out, "\nScraping: %s\n\n", input)
		page, err := t.scraper.Scrape(ctx, input)
		if err != nil {
			fmt.Fprintf(t.out, "\nScrape failed: %v\n\n", err)
			continue
		}

		tree, err := extractor.RenderTree(page.ElementTreeTrimmed, t.format)
		if err != nil {
			return err
		}
		fmt.Fprintln(t.out, tree)
		fmt.Fprintf(t.out, "\n%d elements, %d screenshots\n\n", len(page.Elements), len(page.Screenshots))
	}
}
