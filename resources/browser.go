package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/testhive/app-test-harness/config"
	"github.com/testhive/app-test-harness/framework"
)

// Element lookups block for up to this long before reporting failure.
const implicitWait = 10 * time.Second

const screenshotTimestampFormat = "20060102_150405.000000"

// UnsupportedBrowserError is returned when the configured browser kind is not
// one the harness can provision.
type UnsupportedBrowserError struct {
	Kind config.BrowserKind
}

func (e UnsupportedBrowserError) Error() string {
	return fmt.Sprintf("unsupported browser: %s", e.Kind)
}

// Browser is a provisioned browser session.
type Browser struct {
	driver        selenium.WebDriver
	kind          config.BrowserKind
	screenshotDir string
	logger        framework.Logger
}

// browserCapabilities builds the WebDriver capabilities for the configured
// browser kind, including the stability flags every session gets and the
// headless toggle.
func browserCapabilities(cfg config.Config) (selenium.Capabilities, error) {
	switch cfg.Browser {
	case config.BrowserChrome:
		args := []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--window-size=1920,1080",
			"--start-maximized",
		}
		if cfg.Headless {
			args = append(args, "--headless")
		}
		caps := selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{
			Args: args,
			// no notification popups over the page under test
			Prefs: map[string]interface{}{"profile.default_content_setting_values.notifications": 2},
		})
		return caps, nil

	case config.BrowserFirefox:
		args := []string{"--width=1920", "--height=1080"}
		if cfg.Headless {
			args = append(args, "-headless")
		}
		caps := selenium.Capabilities{"browserName": "firefox"}
		caps.AddFirefox(firefox.Capabilities{Args: args})
		return caps, nil

	case config.BrowserEdge:
		args := []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--window-size=1920,1080",
		}
		if cfg.Headless {
			args = append(args, "--headless")
		}
		caps := selenium.Capabilities{"browserName": "MicrosoftEdge"}
		caps["ms:edgeOptions"] = map[string]interface{}{"args": args}
		return caps, nil

	default:
		return nil, UnsupportedBrowserError{Kind: cfg.Browser}
	}
}

// newBrowser connects to the configured WebDriver server and starts a session.
func newBrowser(cfg config.Config, logger framework.Logger) (*Browser, error) {
	caps, err := browserCapabilities(cfg)
	if err != nil {
		return nil, err
	}
	driver, err := selenium.NewRemote(caps, cfg.WebDriverURL)
	if err != nil {
		return nil, fmt.Errorf("cannot start %s session at %s: %w", cfg.Browser, cfg.WebDriverURL, err)
	}
	if err := driver.SetImplicitWaitTimeout(implicitWait); err != nil {
		_ = driver.Quit()
		return nil, fmt.Errorf("cannot set implicit wait: %w", err)
	}
	logger.Printf("%s WebDriver initialized", cfg.Browser)
	return &Browser{
		driver:        driver,
		kind:          cfg.Browser,
		screenshotDir: cfg.ScreenshotDir,
		logger:        logger,
	}, nil
}

// Kind returns the browser kind this session was provisioned with.
func (b *Browser) Kind() config.BrowserKind { return b.kind }

// Driver exposes the underlying WebDriver session for element-level work.
func (b *Browser) Driver() selenium.WebDriver { return b.driver }

// Navigate loads the given URL.
func (b *Browser) Navigate(url string) error {
	return b.driver.Get(url)
}

// Title returns the current page title.
func (b *Browser) Title() (string, error) {
	return b.driver.Title()
}

// CaptureScreenshot writes a PNG of the current page under the screenshot
// directory, creating it if needed. An empty name gets a timestamped one.
// The file path is returned.
func (b *Browser) CaptureScreenshot(name string) (string, error) {
	if err := os.MkdirAll(b.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create screenshot directory: %w", err)
	}
	if name == "" {
		name = fmt.Sprintf("screenshot_%s.png", time.Now().Format(screenshotTimestampFormat))
	}
	data, err := b.driver.Screenshot()
	if err != nil {
		return "", fmt.Errorf("cannot capture screenshot: %w", err)
	}
	path := filepath.Join(b.screenshotDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("cannot write screenshot: %w", err)
	}
	b.logger.Printf("Screenshot saved: %s", path)
	return path, nil
}

// Close ends the browser session.
func (b *Browser) Close() error {
	return b.driver.Quit()
}
