package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/testhive/app-test-harness/config"
	"github.com/testhive/app-test-harness/framework/apptest"
)

type commandParams struct {
	browser       string
	headless      bool
	baseURL       string
	dbPath        string
	slow          bool
	webDriverURL  string
	dataDir       string
	screenshotDir string
	logDir        string
	mockApp       bool
	filters       apptest.RegexFilters
	debug         bool
	debugAll      bool
	jUnitFile     string
}

func (c *commandParams) Read(args []string) bool {
	defaults := config.Default()

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.browser, "browser", string(defaults.Browser), "browser to use for web tests (chrome, firefox, edge)")
	fs.BoolVar(&c.headless, "headless", false, "run the browser in headless mode")
	fs.StringVar(&c.baseURL, "base-url", defaults.BaseURL, "base URL for API and web testing")
	fs.StringVar(&c.dbPath, "db-path", defaults.DBPath, "path to the test database")
	fs.BoolVar(&c.slow, "slow", false, "run slow tests")
	fs.StringVar(&c.webDriverURL, "webdriver-url", defaults.WebDriverURL, "WebDriver server URL for browser tests")
	fs.StringVar(&c.dataDir, "data-dir", defaults.DataDir, "directory containing fixture files")
	fs.StringVar(&c.screenshotDir, "screenshot-dir", defaults.ScreenshotDir, "directory for captured screenshots")
	fs.StringVar(&c.logDir, "log-dir", "logs", "directory for run log files")
	fs.BoolVar(&c.mockApp, "mock-app", false, "serve the built-in mock application at the base URL")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

// Configuration freezes the parsed options into the typed Config that every
// provisioner receives.
func (c *commandParams) Configuration() config.Config {
	return config.Config{
		Browser:       config.BrowserKind(c.browser),
		Headless:      c.headless,
		BaseURL:       c.baseURL,
		DBPath:        c.dbPath,
		RunSlow:       c.slow,
		WebDriverURL:  c.webDriverURL,
		DataDir:       c.dataDir,
		ScreenshotDir: c.screenshotDir,
		StartMockApp:  c.mockApp,
	}
}
