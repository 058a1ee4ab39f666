// Package config defines the typed configuration for a harness run.
//
// A Config is built exactly once, by the command-line parsing step in main,
// and then passed by value into every provisioner. Nothing resolves options
// dynamically at test time and nothing can mutate the configuration after
// the run begins.
package config

// BrowserKind selects which WebDriver implementation the browser provisioner
// will use.
type BrowserKind string

const (
	BrowserChrome  BrowserKind = "chrome"
	BrowserFirefox BrowserKind = "firefox"
	BrowserEdge    BrowserKind = "edge"
)

// Supported reports whether this is one of the browser kinds the harness
// knows how to provision.
func (k BrowserKind) Supported() bool {
	switch k {
	case BrowserChrome, BrowserFirefox, BrowserEdge:
		return true
	}
	return false
}

// Built-in defaults, overridden by command-line options.
const (
	DefaultBrowser       = BrowserChrome
	DefaultBaseURL       = "http://localhost:8000"
	DefaultDBPath        = "test.db"
	DefaultWebDriverURL  = "http://localhost:4444/wd/hub"
	DefaultDataDir       = "testdata"
	DefaultScreenshotDir = "screenshots"
)

// Config holds every resolved option for one harness run.
type Config struct {
	// Browser is the WebDriver implementation to provision.
	Browser BrowserKind

	// Headless toggles headless browser mode.
	Headless bool

	// BaseURL is the root for API and web requests.
	BaseURL string

	// DBPath is the file backing the database manager.
	DBPath string

	// RunSlow includes tests that declare themselves slow.
	RunSlow bool

	// WebDriverURL is the address of the WebDriver server (Selenium hub,
	// chromedriver or geckodriver in server mode).
	WebDriverURL string

	// DataDir is the directory that fixture files are read from.
	DataDir string

	// ScreenshotDir is the directory that screenshots are written to.
	ScreenshotDir string

	// StartMockApp makes the harness serve its own mock application at
	// BaseURL for the duration of the run.
	StartMockApp bool
}

// Default returns a Config with every option at its built-in default.
func Default() Config {
	return Config{
		Browser:       DefaultBrowser,
		BaseURL:       DefaultBaseURL,
		DBPath:        DefaultDBPath,
		WebDriverURL:  DefaultWebDriverURL,
		DataDir:       DefaultDataDir,
		ScreenshotDir: DefaultScreenshotDir,
	}
}
