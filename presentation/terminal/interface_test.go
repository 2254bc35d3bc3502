package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"page_structure/domain/entities"
)

type fakeScraper struct {
	urls []string
	fail map[string]bool
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) (*entities.ScrapedPage, error) {
	f.urls = append(f.urls, url)
	if f.fail[url] {
		return nil, errors.New("navigation timeout")
	}
	node := &entities.ElementNode{ID: 0, TagName: "button", Text: "Go"}
	return &entities.ScrapedPage{
		URL:                url,
		Elements:           []*entities.ElementNode{node},
		ElementTreeTrimmed: []*entities.ElementNode{node},
		Screenshots:        [][]byte{{1}},
	}, nil
}

func (f *fakeScraper) Status() []entities.ScrapeTask { return nil }

func run(t *testing.T, s *fakeScraper, format entities.TreeFormat, input string) string {
	t.Helper()
	logger, _ := test.NewNullLogger()
	var out bytes.Buffer
	if err := NewTerminalInterface(s, format, strings.NewReader(input), &out, logger).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestRun_ScrapesUntilQuit(t *testing.T) {
	s := &fakeScraper{fail: map[string]bool{"https://down.example.com": true}}
	out := run(t, s, entities.TreeFormatHTML, "https://example.com\n\nhttps://down.example.com\nquit\nhttps://never.example.com\n")

	if len(s.urls) != 2 {
		t.Errorf("scraped %v", s.urls)
	}
	if !strings.Contains(out, "<button>Go</button>") {
		t.Errorf("missing tree in output:\n%s", out)
	}
	if !strings.Contains(out, "Scrape failed: navigation timeout") || !strings.Contains(out, "Goodbye!") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRun_EOF(t *testing.T) {
	s := &fakeScraper{}
	out := run(t, s, entities.TreeFormatJSON, "https://example.com")

	if len(s.urls) != 1 {
		t.Errorf("a final line without newline should still be scraped, got %v", s.urls)
	}
	if !strings.Contains(out, `"tagName":"button"`) {
		t.Errorf("output:\n%s", out)
	}
}
