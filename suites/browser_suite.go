package suites

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testhive/app-test-harness/framework/apptest"
	"github.com/testhive/app-test-harness/resources"
)

// Browser tests need a running WebDriver server and take whole seconds per
// page load, so the suite declares itself slow.
func doBrowserTests(t *apptest.T, mgr *resources.Manager) {
	t.Slow()

	t.Run("landing page loads", func(t *apptest.T) {
		browser, err := mgr.Browser(t, resources.ScopeFunction)
		require.NoError(t, err)
		captureOnFailure(t, browser)

		require.NoError(t, browser.Navigate(mgr.Config().BaseURL))
		url, err := browser.Driver().CurrentURL()
		require.NoError(t, err)
		assert.NotEmpty(t, url)
	})

	t.Run("page has a title", func(t *apptest.T) {
		browser, err := mgr.Browser(t, resources.ScopeFunction)
		require.NoError(t, err)
		captureOnFailure(t, browser)

		require.NoError(t, browser.Navigate(mgr.Config().BaseURL))
		title, err := browser.Title()
		require.NoError(t, err)
		t.Debug("page title: %q", title)
		assert.NotEmpty(t, title)
	})
}

// captureOnFailure saves a screenshot when the test fails. Registered after
// acquisition, so it runs before the browser handle is released.
func captureOnFailure(t *apptest.T, browser *resources.Browser) {
	t.Defer(func() {
		if t.Failed() {
			_, _ = browser.CaptureScreenshot("")
		}
	})
}
