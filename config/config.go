package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BrowserConfig selects and sizes the browser.
type BrowserConfig struct {
	Driver            string // "playwright" or "selenium"
	Headless          bool
	Width             int
	Height            int
	NavigationTimeout time.Duration
	StatePath         string
	DriverPath        string
	ChromeBinary      string
}

// ScrapeConfig controls the scrape loop and extraction.
type ScrapeConfig struct {
	SettleDelay     time.Duration
	MaxScreenshots  int
	MaxRetries      int
	ExtendedContext bool
	TreeFormat      string
}

// StoreConfig selects where scraped pages are written.
type StoreConfig struct {
	Kind     string // "file", "s3" or "none"
	Dir      string
	S3Bucket string
	S3Prefix string
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config is the top-level configuration.
type Config struct {
	Browser  BrowserConfig
	Scrape   ScrapeConfig
	Store    StoreConfig
	Logging  LoggingConfig
	HTTPAddr string
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Browser = BrowserConfig{
		Driver:            strings.ToLower(getEnv("BROWSER_DRIVER", "playwright")),
		Headless:          parseBool(getEnv("HEADLESS", "true")),
		Width:             parseInt(os.Getenv("VIEWPORT_WIDTH"), 1280),
		Height:            parseInt(os.Getenv("VIEWPORT_HEIGHT"), 720),
		NavigationTimeout: parseDuration(os.Getenv("NAVIGATION_TIMEOUT"), 30*time.Second),
		StatePath:         os.Getenv("BROWSER_STATE_PATH"),
		DriverPath:        os.Getenv("BROWSER_DRIVER_PATH"),
		ChromeBinary:      os.Getenv("CHROME_BINARY_PATH"),
	}

	cfg.Scrape = ScrapeConfig{
		SettleDelay:     parseDuration(os.Getenv("SETTLE_DELAY"), 5*time.Second),
		MaxScreenshots:  parseInt(os.Getenv("MAX_SCREENSHOTS"), 10),
		MaxRetries:      parseInt(os.Getenv("SCRAPE_MAX_RETRIES"), 2),
		ExtendedContext: parseBool(getEnv("EXTENDED_CONTEXT", "true")),
		TreeFormat:      strings.ToLower(getEnv("TREE_FORMAT", "json")),
	}

	cfg.Store = StoreConfig{
		Kind:     strings.ToLower(getEnv("RESULT_STORE", "file")),
		Dir:      getEnv("RESULT_DIR", "results"),
		S3Bucket: os.Getenv("S3_BUCKET"),
		S3Prefix: os.Getenv("S3_PREFIX"),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "text"),
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  parseInt(os.Getenv("LOG_MAX_SIZE_MB"), 50),
		MaxBackups: parseInt(os.Getenv("LOG_MAX_BACKUPS"), 5),
		MaxAgeDays: parseInt(os.Getenv("LOG_MAX_AGE_DAYS"), 14),
		Compress:   parseBool(os.Getenv("LOG_COMPRESS")),
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":3000")
	return cfg
}

// Validate rejects values the rest of the program cannot run with.
func (c Config) Validate() error {
	switch c.Browser.Driver {
	case "playwright", "selenium":
	default:
		return fmt.Errorf("unknown BROWSER_DRIVER %q", c.Browser.Driver)
	}
	switch c.Store.Kind {
	case "file", "none":
	case "s3":
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when RESULT_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown RESULT_STORE %q", c.Store.Kind)
	}
	switch c.Scrape.TreeFormat {
	case "json", "html":
	default:
		return fmt.Errorf("unknown TREE_FORMAT %q", c.Scrape.TreeFormat)
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Scrape.MaxScreenshots < 1 {
		return fmt.Errorf("MAX_SCREENSHOTS must be at least 1")
	}
	if c.Scrape.MaxRetries < 0 {
		return fmt.Errorf("SCRAPE_MAX_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
