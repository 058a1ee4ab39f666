// Package suites contains the test suites the harness executes against the
// application under test: API tests, data-layer tests, and browser UI tests.
package suites

import (
	"github.com/testhive/app-test-harness/config"
	"github.com/testhive/app-test-harness/framework"
	"github.com/testhive/app-test-harness/framework/apptest"
	"github.com/testhive/app-test-harness/resources"
)

// RunAppTestSuite runs every suite and returns the accumulated results. The
// resource manager is created inside the root scope so that session-scoped
// handles are released when the run ends, after the last test.
func RunAppTestSuite(
	cfg config.Config,
	filters apptest.RegexFilters,
	testLogger apptest.TestLogger,
	logger framework.Logger,
) apptest.Results {
	testConfig := apptest.TestConfiguration{
		Filter:     filters.Match,
		TestLogger: testLogger,
		RunSlow:    cfg.RunSlow,
	}
	return apptest.Run(testConfig, func(t *apptest.T) {
		mgr := resources.NewManager(cfg, logger, t)
		t.Run("api", func(t *apptest.T) { doAPITests(t, mgr) })
		t.Run("database", func(t *apptest.T) { doDatabaseTests(t, mgr) })
		t.Run("browser", func(t *apptest.T) { doBrowserTests(t, mgr) })
	})
}
