package main

import (
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/testhive/app-test-harness/framework/apptest"
	"github.com/testhive/app-test-harness/framework/runlog"
	"github.com/testhive/app-test-harness/mockapp"
	"github.com/testhive/app-test-harness/suites"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

const bannerTimestampFormat = "2006-01-02 15:04:05"

func main() {
	fmt.Printf("app-test-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	os.Exit(run(params))
}

func run(params commandParams) int {
	logger, logPath, err := runlog.Init(runlog.Options{Dir: params.logDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Writing run log to %s\n", logPath)

	cfg := params.Configuration()

	logger.Banner("Test session started at %s", time.Now().Format(bannerTimestampFormat))
	defer sessionFinishedBanner(logger)

	if cfg.StartMockApp {
		addr, err := listenAddr(cfg.BaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		app := mockapp.NewServer(logger.WithComponent("mockapp"))
		if err := app.Start(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot start mock application: %v\n", err)
			return 1
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warnf("Error stopping mock application: %s", err)
			}
		}()
	}

	apptest.PrintFilterDescription(params.filters)

	consoleLogger := apptest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	loggers := []apptest.TestLogger{
		consoleLogger,
		apptest.RunLogTestLogger{Logger: logger.WithComponent("results")},
	}
	if params.jUnitFile != "" {
		loggers = append(loggers, apptest.NewJUnitTestLogger(params.jUnitFile, params.filters))
	}
	testLogger := &apptest.MultiTestLogger{Loggers: loggers}

	results := suites.RunAppTestSuite(cfg, params.filters, testLogger, logger.WithComponent("resources"))

	fmt.Println()
	if err := testLogger.EndLog(results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing log: %v\n", err)
		return 1
	}
	if !results.OK() {
		return 1
	}
	return 0
}

// sessionFinishedBanner is deferred by run; the timestamp must be taken when
// the session actually ends, not when the defer statement was reached.
func sessionFinishedBanner(logger *runlog.Logger) {
	logger.Banner("Test session finished at %s", time.Now().Format(bannerTimestampFormat))
}

// listenAddr extracts the host:port the mock application should listen on
// from the configured base URL.
func listenAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Port() == "" {
		return "", fmt.Errorf("base URL %q must include a port to serve the mock application", baseURL)
	}
	return u.Host, nil
}
