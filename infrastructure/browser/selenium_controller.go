package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"page_structure/domain/interfaces"
)

const chromeDriverPort = 9515

type SeleniumController struct {
	scriptPage

	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumController - creates new Selenium browser controller instance
func NewSeleniumController(opts Options, logger *logrus.Logger) (*SeleniumController, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	chromeBinary := findChromeBinary(opts.ChromeBinary)
	if chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
	}

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", opts.Width, opts.Height),
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	if chromeBinary != "" {
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	if opts.NavigationTimeout > 0 {
		if err := wd.SetPageLoadTimeout(opts.NavigationTimeout); err != nil {
			logger.Warnf("Failed to set page load timeout: %v", err)
		}
	}

	s := &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}
	s.scriptPage = scriptPage{runner: s, logger: logger}
	return s, nil
}

// wrapScript turns a function expression into a webdriver script body
func wrapScript(fn string) string {
	return "return (" + fn + ")(arguments[0]);"
}

// Evaluate runs fn in the current page with arg as its only argument
func (s *SeleniumController) Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.ExecuteScript(wrapScript(fn), []interface{}{arg})
}

// Navigate - navigates browser to specified URL
func (s *SeleniumController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Infof("Navigating to: %s", url)
	return s.wd.Get(url)
}

// GetCurrentURL - returns current page URL
func (s *SeleniumController) GetCurrentURL(ctx context.Context) (string, error) {
	return s.wd.CurrentURL()
}

func (s *SeleniumController) PageContent(ctx context.Context) (string, error) {
	return s.wd.PageSource()
}

// VisibleText - body text of the page followed by its top-level iframes
func (s *SeleniumController) VisibleText(ctx context.Context) (string, error) {
	out, err := s.Evaluate(ctx, bodyTextScript, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get page text: %w", err)
	}
	text, _ := out.(string)

	frames, err := s.wd.FindElements(selenium.ByTagName, "iframe")
	if err != nil {
		return text, nil
	}
	for _, frame := range frames {
		if err := s.wd.SwitchFrame(frame); err != nil {
			s.logger.Warnf("Failed to get text from iframe: %v", err)
			continue
		}
		if out, err := s.Evaluate(ctx, bodyTextScript, nil); err == nil {
			frameText, _ := out.(string)
			text += frameText
		} else {
			s.logger.Warnf("Failed to get text from iframe: %v", err)
		}
		if err := s.wd.SwitchFrame(nil); err != nil {
			return text, fmt.Errorf("failed to return to main frame: %w", err)
		}
	}
	return text, nil
}

// TakeScreenshot - takes screenshot of current page
func (s *SeleniumController) TakeScreenshot(ctx context.Context) ([]byte, error) {
	return s.wd.Screenshot()
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumController) Close() error {
	if s.wd != nil {
		s.wd.Quit()
	}
	if s.service != nil {
		s.service.Stop()
	}
	return nil
}

var _ interfaces.BrowserController = (*SeleniumController)(nil)
