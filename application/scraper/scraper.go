// Package scraper drives a browser through a page: it scrolls viewport by
// viewport taking annotated screenshots, then runs a final extraction pass
// from the top and collects everything into a ScrapedPage.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"page_structure/application/extractor"
	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// ErrInvalidURL is returned for urls that can never be scraped
var ErrInvalidURL = errors.New("invalid url")

const (
	// scrolling stops once a scroll moves the page by this much or less
	minScrollDelta = 25

	// consecutive viewports overlap by this many pixels
	scrollOverlap = 200
)

// Options configures a Scraper
type Options struct {
	MaxScreenshots int
	SettleDelay    time.Duration
	MaxRetries     int

	// NewBackOff returns the retry schedule for one scrape; nil means exponential
	NewBackOff func() backoff.BackOff
}

// DefaultOptions mirrors the environment defaults
func DefaultOptions() Options {
	return Options{
		MaxScreenshots: 10,
		SettleDelay:    5 * time.Second,
		MaxRetries:     2,
	}
}

// Scraper owns one browser. Scrapes are serialized because every pass
// mutates the shared page.
type Scraper struct {
	browser   interfaces.BrowserController
	extractor *extractor.Extractor
	store     interfaces.ResultStore
	policy    interfaces.ExportPolicy
	metrics   interfaces.Metrics
	logger    *logrus.Logger
	opts      Options

	run sync.Mutex

	mu    sync.Mutex
	tasks map[string]*entities.ScrapeTask
}

// NewScraper - creates new scraper. store, policy and metrics may be nil.
func NewScraper(
	browser interfaces.BrowserController,
	x *extractor.Extractor,
	store interfaces.ResultStore,
	policy interfaces.ExportPolicy,
	metrics interfaces.Metrics,
	logger *logrus.Logger,
	opts Options,
) *Scraper {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.MaxScreenshots <= 0 {
		opts.MaxScreenshots = DefaultOptions().MaxScreenshots
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Scraper{
		browser:   browser,
		extractor: x,
		store:     store,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
		tasks:     make(map[string]*entities.ScrapeTask),
	}
}

// Scrape collects the page at rawURL, retrying failed attempts
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*entities.ScrapedPage, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	task := s.startTask(rawURL)
	defer s.finishTask(task.ID)

	s.run.Lock()
	defer s.run.Unlock()

	started := time.Now()
	var page *entities.ScrapedPage
	operation := func() error {
		s.updateTask(task.ID, func(t *entities.ScrapeTask) {
			t.Attempts++
			t.Status = entities.TaskStatusInProgress
		})
		p, err := s.scrapeOnce(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("scrape canceled: %w", ctx.Err()))
			}
			return err
		}
		page = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.WithFields(logrus.Fields{
			"url":   rawURL,
			"error": err,
			"wait":  wait,
		}).Info("Scraping failed, will retry")
		if s.metrics != nil {
			s.metrics.IncRetry()
		}
	}

	err := backoff.RetryNotify(operation, s.backOff(ctx), notify)
	if err != nil {
		s.updateTask(task.ID, func(t *entities.ScrapeTask) {
			t.Status = entities.TaskStatusFailed
			t.Error = err.Error()
		})
		s.observe("error", 0, started)
		s.logger.WithFields(logrus.Fields{
			"url":         rawURL,
			"max_retries": s.opts.MaxRetries,
		}).WithError(err).Error("Scraping failed after max retries, aborting")
		return nil, fmt.Errorf("scraping %s failed: %w", rawURL, err)
	}

	s.updateTask(task.ID, func(t *entities.ScrapeTask) { t.Status = entities.TaskStatusCompleted })
	s.observe("success", len(page.Screenshots), started)

	if s.store != nil {
		key, err := s.store.Save(ctx, page)
		if err != nil {
			s.logger.WithError(err).WithField("url", rawURL).Error("Failed to save scraped page")
		} else {
			s.logger.WithField("key", key).Info("Scraped page saved")
		}
	}
	return page, nil
}

// Status lists the scrapes currently in flight, oldest first
func (s *Scraper) Status() []entities.ScrapeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.ScrapeTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Close closes the browser
func (s *Scraper) Close() error {
	return s.browser.Close()
}

func (s *Scraper) scrapeOnce(ctx context.Context, rawURL string) (*entities.ScrapedPage, error) {
	s.logger.WithField("url", rawURL).Info("Navigating to URL")
	if err := s.browser.Navigate(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if s.opts.SettleDelay > 0 {
		s.logger.Infof("Waiting for %s before scraping the website", s.opts.SettleDelay)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("scrape canceled: %w", ctx.Err())
		case <-time.After(s.opts.SettleDelay):
		}
	}

	screenshots, err := s.captureViewports(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := s.browser.RemoveHintMarkers(ctx); err != nil {
		s.logger.WithError(err).Debug("failed to remove hint markers")
	}
	if _, err := s.browser.ScrollTo(ctx, 0, 0); err != nil {
		return nil, fmt.Errorf("failed to scroll to top: %w", err)
	}

	structure, err := s.pass(ctx)
	if err != nil {
		return nil, err
	}

	currentURL, err := s.browser.GetCurrentURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current url: %w", err)
	}
	html, err := s.browser.PageContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}
	text, err := s.browser.VisibleText(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to get visible text")
		text = ""
	}

	trimmed := extractor.ExportTree(structure.Forest)
	if s.policy != nil {
		s.policy.Redact(trimmed)
	}

	return &entities.ScrapedPage{
		ID:                 uuid.NewString(),
		URL:                currentURL,
		Elements:           structure.Registry,
		Locators:           structure.Locators,
		ElementTree:        structure.Forest,
		ElementTreeTrimmed: trimmed,
		HintMarkers:        structure.HintMarkers,
		Screenshots:        screenshots,
		HTML:               html,
		ExtractedText:      text,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// captureViewports screenshots the page one viewport at a time with the hint
// overlay drawn, starting from the top.
func (s *Scraper) captureViewports(ctx context.Context, rawURL string) ([][]byte, error) {
	var screenshots [][]byte

	scrollYOld := -30.0
	scrollY, err := s.browser.ScrollTo(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to scroll to top: %w", err)
	}

	for math.Abs(scrollYOld-scrollY) > minScrollDelta && len(screenshots) < s.opts.MaxScreenshots {
		structure, err := s.pass(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.browser.DrawHintMarkers(ctx, structure.HintMarkers); err != nil {
			s.logger.WithError(err).Debug("failed to draw hint markers")
		}

		shot, err := s.browser.TakeScreenshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to take screenshot: %w", err)
		}
		screenshots = append(screenshots, shot)

		if err := s.browser.RemoveHintMarkers(ctx); err != nil {
			s.logger.WithError(err).Debug("failed to remove hint markers")
		}

		scrollYOld = scrollY
		s.logger.WithFields(logrus.Fields{
			"url":             rawURL,
			"num_screenshots": len(screenshots),
		}).Info("Scrolling to next page")

		height, err := s.browser.ViewportHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read viewport height: %w", err)
		}
		scrollY, err = s.browser.ScrollBy(ctx, 0, height-scrollOverlap)
		if err != nil {
			return nil, fmt.Errorf("failed to scroll: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"scroll_y":     scrollY,
			"scroll_y_old": scrollYOld,
		}).Debug("Scrolled to next page")
	}
	return screenshots, nil
}

// pass captures the current page and runs one extraction pass over it
func (s *Scraper) pass(ctx context.Context) (*entities.PageStructure, error) {
	started := time.Now()
	doc, err := s.browser.Document(ctx)
	if err != nil {
		s.observePass("error", 0, started)
		return nil, fmt.Errorf("failed to capture document: %w", err)
	}
	if closer, ok := doc.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				s.logger.WithError(err).Debug("failed to release captured document")
			}
		}()
	}

	structure, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		s.observePass("error", 0, started)
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	s.observePass("success", len(structure.Registry), started)
	return structure, nil
}

func (s *Scraper) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if s.opts.NewBackOff != nil {
		b = s.opts.NewBackOff()
	} else {
		b = backoff.NewExponentialBackOff()
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.MaxRetries)), ctx)
}

func (s *Scraper) observe(result string, screenshots int, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveScrape(result, screenshots, time.Since(started))
	}
}

func (s *Scraper) observePass(result string, elements int, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePass(result, elements, time.Since(started))
	}
}

func (s *Scraper) startTask(rawURL string) *entities.ScrapeTask {
	task := &entities.ScrapeTask{
		ID:        uuid.NewString(),
		URL:       rawURL,
		Status:    entities.TaskStatusPending,
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.tasks[task.ID] = task
	n := len(s.tasks)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetInFlight(n)
	}
	return task
}

func (s *Scraper) updateTask(id string, fn func(*entities.ScrapeTask)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		fn(t)
	}
}

func (s *Scraper) finishTask(id string) {
	s.mu.Lock()
	delete(s.tasks, id)
	n := len(s.tasks)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetInFlight(n)
	}
}

func validateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") || (u.Host == "" && u.Scheme != "file") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
