package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"page_structure/application/extractor"
	"page_structure/application/scraper"
	"page_structure/config"
	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
	"page_structure/infrastructure/browser"
	"page_structure/infrastructure/logging"
	"page_structure/infrastructure/metrics"
	"page_structure/infrastructure/security"
	"page_structure/infrastructure/storage"
)

// app holds everything a command needs. Close releases it in reverse order.
type app struct {
	cfg      config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	browser  interfaces.BrowserController
	scraper  *scraper.Scraper

	closers []io.Closer
}

// loadApp reads configuration and sets up logging only
func loadApp() (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		closers: []io.Closer{logCloser},
	}, nil
}

// newApp additionally starts the browser and builds the scraper
func newApp(ctx context.Context) (*app, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(a.registry)

	store, err := a.newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.browser, err = a.newBrowser()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	a.closers = append(a.closers, a.browser)

	x := extractor.New(a.logger, extractor.Options{Extended: a.cfg.Scrape.ExtendedContext})
	a.scraper = scraper.NewScraper(
		a.browser,
		x,
		store,
		security.NewSecurityLayer(a.logger),
		recorder,
		a.logger,
		scraper.Options{
			MaxScreenshots: a.cfg.Scrape.MaxScreenshots,
			SettleDelay:    a.cfg.Scrape.SettleDelay,
			MaxRetries:     a.cfg.Scrape.MaxRetries,
			NewBackOff: func() backoff.BackOff {
				return backoff.NewExponentialBackOff()
			},
		},
	)
	return a, nil
}

func (a *app) newBrowser() (interfaces.BrowserController, error) {
	opts := browser.Options{
		Headless:          a.cfg.Browser.Headless,
		Width:             a.cfg.Browser.Width,
		Height:            a.cfg.Browser.Height,
		NavigationTimeout: a.cfg.Browser.NavigationTimeout,
		StatePath:         a.cfg.Browser.StatePath,
		DriverPath:        a.cfg.Browser.DriverPath,
		ChromeBinary:      a.cfg.Browser.ChromeBinary,
	}
	if a.cfg.Browser.Driver == "selenium" {
		return browser.NewSeleniumController(opts, a.logger)
	}
	return browser.NewBrowserController(opts, a.logger)
}

func (a *app) newStore(ctx context.Context) (interfaces.ResultStore, error) {
	switch a.cfg.Store.Kind {
	case "s3":
		return storage.NewS3Store(ctx, a.cfg.Store.S3Bucket, a.cfg.Store.S3Prefix, a.logger)
	case "file":
		return storage.NewFileStore(a.cfg.Store.Dir, a.logger)
	default:
		a.logger.Info("Result store disabled")
		return nil, nil
	}
}

func (a *app) treeFormat() entities.TreeFormat {
	return entities.TreeFormat(a.cfg.Scrape.TreeFormat)
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
