package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"page_structure/domain/interfaces"
)

// Options configures a browser controller
type Options struct {
	Headless          bool
	Width             int
	Height            int
	NavigationTimeout time.Duration

	// StatePath keeps cookies and local storage between runs when set
	StatePath string

	// DriverPath and ChromeBinary are used by the selenium controller only
	DriverPath   string
	ChromeBinary string
}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type browserController struct {
	scriptPage

	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	pageMutex   sync.Mutex
	storagePath string
	timeout     time.Duration
}

// NewBrowserController - creates new playwright browser controller
func NewBrowserController(opts Options, logger *logrus.Logger) (interfaces.BrowserController, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
		BypassCSP:         playwright.Bool(true),
		UserAgent:         playwright.String(userAgent),
	}

	if opts.StatePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.StatePath), 0755); err != nil {
			pw.Stop()
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		if data, err := os.ReadFile(opts.StatePath); err == nil {
			var storageState playwright.StorageState
			if err := json.Unmarshal(data, &storageState); err == nil {
				contextOptions.StorageState = storageState.ToOptionalStorageState()
			}
		}
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-infobars",
			"--disable-notifications",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	controller := &browserController{
		pw:          pw,
		browser:     browser,
		context:     bctx,
		page:        page,
		storagePath: opts.StatePath,
		timeout:     opts.NavigationTimeout,
	}
	controller.scriptPage = scriptPage{runner: controller, logger: logger}
	return controller, nil
}

func (b *browserController) currentPage() playwright.Page {
	b.pageMutex.Lock()
	defer b.pageMutex.Unlock()
	return b.page
}

// Evaluate runs fn in the current page
func (b *browserController) Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if arg == nil {
		return b.currentPage().Evaluate(fn)
	}
	return b.currentPage().Evaluate(fn, arg)
}

// Navigate - navigates to the specified URL and waits for the network to go idle
func (b *browserController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := b.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	_, err := b.currentPage().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

// TakeScreenshot - captures the viewport
func (b *browserController) TakeScreenshot(ctx context.Context) ([]byte, error) {
	return b.currentPage().Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
	})
}

func (b *browserController) GetCurrentURL(ctx context.Context) (string, error) {
	return b.currentPage().URL(), nil
}

func (b *browserController) PageContent(ctx context.Context) (string, error) {
	return b.currentPage().Content()
}

// VisibleText - body text of the main frame followed by every attached child frame
func (b *browserController) VisibleText(ctx context.Context) (string, error) {
	return b.frameText(ctx, b.currentPage().MainFrame())
}

func (b *browserController) frameText(ctx context.Context, frame playwright.Frame) (string, error) {
	out, err := frame.Evaluate(bodyTextScript)
	if err != nil {
		return "", fmt.Errorf("failed to get text from frame %s: %w", frame.URL(), err)
	}
	text, _ := out.(string)
	for _, child := range frame.ChildFrames() {
		if child.IsDetached() {
			continue
		}
		childText, err := b.frameText(ctx, child)
		if err != nil {
			b.logger.WithError(err).Warn("Failed to get text from iframe")
			continue
		}
		text += childText
	}
	return text, nil
}

// SaveState - saves cookies and local storage to StatePath
func (b *browserController) SaveState() error {
	if b.context == nil || b.storagePath == "" {
		return nil
	}
	if _, err := b.context.StorageState(b.storagePath); err != nil {
		if isClosedErr(err) {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}
	return nil
}

// Close - closes the browser and saves state
func (b *browserController) Close() error {
	var closeErr error

	if err := b.SaveState(); err != nil {
		closeErr = err
	}

	if b.context != nil {
		if err := b.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = joinErr(closeErr, fmt.Errorf("failed to close context: %w", err))
		}
		b.context = nil
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil && !isClosedErr(err) {
			closeErr = joinErr(closeErr, fmt.Errorf("failed to close browser: %w", err))
		}
		b.browser = nil
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			closeErr = joinErr(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		b.pw = nil
	}

	return closeErr
}

func isClosedErr(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

func joinErr(prev, err error) error {
	if prev == nil {
		return err
	}
	return fmt.Errorf("%v; %w", prev, err)
}

var _ interfaces.BrowserController = (*browserController)(nil)
