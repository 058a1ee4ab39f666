package resources

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/testhive/app-test-harness/apiclient"
	"github.com/testhive/app-test-harness/config"
	"github.com/testhive/app-test-harness/dbmanager"
	"github.com/testhive/app-test-harness/framework/apptest"
)

// lineLogger collects formatted log lines so tests can assert on the
// provision/release sequence.
type lineLogger struct {
	lock  sync.Mutex
	lines []string
}

func (l *lineLogger) Println(args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = append(l.lines, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (l *lineLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(message, args...))
}

func (l *lineLogger) countContaining(substring string) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	n := 0
	for _, line := range l.lines {
		if strings.Contains(line, substring) {
			n++
		}
	}
	return n
}

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.DBPath = ":memory:"
	return cfg
}

func TestFunctionScopeProvidesFreshHandlePerTest(t *testing.T) {
	log := &lineLogger{}
	var first, second *dbmanager.Manager

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(memoryConfig(), log, root)
		root.Run("one", func(t1 *apptest.T) {
			var err error
			first, err = m.Database(t1, ScopeFunction)
			require.NoError(t1, err)
		})
		root.Run("two", func(t2 *apptest.T) {
			var err error
			second, err = m.Database(t2, ScopeFunction)
			require.NoError(t2, err)

			// the first test's handle was already released before this one ran
			assert.Equal(t2, 1, log.countContaining("Released database (function scope)"))
		})
	})
	require.True(t, results.OK())
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, log.countContaining("Released database (function scope)"))
}

func TestSessionScopeReusesOneHandleAcrossTests(t *testing.T) {
	log := &lineLogger{}
	var first, second *dbmanager.Manager

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(memoryConfig(), log, root)
		root.Run("one", func(t1 *apptest.T) {
			var err error
			first, err = m.Database(t1, ScopeSession)
			require.NoError(t1, err)
		})
		root.Run("two", func(t2 *apptest.T) {
			var err error
			second, err = m.Database(t2, ScopeSession)
			require.NoError(t2, err)

			// still alive between tests
			assert.Equal(t2, 0, log.countContaining("Released database"))
		})
	})
	require.True(t, results.OK())
	assert.Same(t, first, second)
	assert.Equal(t, 1, log.countContaining("Database provisioned"))
	assert.Equal(t, 1, log.countContaining("Released database (session scope)"))
}

func TestProcessScopeBehavesLikeSession(t *testing.T) {
	log := &lineLogger{}
	var first, second *dbmanager.Manager

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(memoryConfig(), log, root)
		root.Run("one", func(t1 *apptest.T) {
			first, _ = m.Database(t1, ScopeProcess)
		})
		root.Run("two", func(t2 *apptest.T) {
			second, _ = m.Database(t2, ScopeSession)
		})
	})
	require.True(t, results.OK())
	assert.Same(t, first, second)
}

func TestHandleIsReleasedEvenWhenTestFails(t *testing.T) {
	log := &lineLogger{}

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(memoryConfig(), log, root)
		root.Run("failing", func(t1 *apptest.T) {
			_, err := m.Database(t1, ScopeFunction)
			require.NoError(t1, err)
			t1.Errorf("deliberate failure")
		})
	})
	assert.False(t, results.OK())
	assert.Equal(t, 1, log.countContaining("Released database (function scope)"))
}

func TestAPIClientSessionScopeIsCached(t *testing.T) {
	log := &lineLogger{}
	var first, second *apiclient.Client

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(memoryConfig(), log, root)
		root.Run("one", func(t1 *apptest.T) {
			var err error
			first, err = m.APIClient(t1, ScopeSession)
			require.NoError(t1, err)
		})
		root.Run("two", func(t2 *apptest.T) {
			var err error
			second, err = m.APIClient(t2, ScopeSession)
			require.NoError(t2, err)
		})
	})
	require.True(t, results.OK())
	assert.Same(t, first, second)
	assert.Equal(t, 1, log.countContaining("Released HTTP session (session scope)"))
}

func TestBrowserProvisioningRejectsUnknownKind(t *testing.T) {
	log := &lineLogger{}

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		cfg := memoryConfig()
		cfg.Browser = config.BrowserKind("safari")
		m := NewManager(cfg, log, root)
		root.Run("browser", func(t1 *apptest.T) {
			_, err := m.Browser(t1, ScopeFunction)
			require.Error(t1, err)
			var unsupported UnsupportedBrowserError
			require.ErrorAs(t1, err, &unsupported)
			assert.Equal(t1, config.BrowserKind("safari"), unsupported.Kind)
		})
	})
	assert.True(t, results.OK())
	assert.Equal(t, 1, log.countContaining("Failed to provision browser"))
}

func TestConfigIsExposed(t *testing.T) {
	cfg := memoryConfig()
	cfg.BaseURL = "http://example.test"
	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		m := NewManager(cfg, nil, root)
		assert.Equal(root, "http://example.test", m.Config().BaseURL)
	})
	assert.True(t, results.OK())
}

func TestChromeCapabilities(t *testing.T) {
	cfg := memoryConfig()
	cfg.Browser = config.BrowserChrome

	caps, err := browserCapabilities(cfg)
	require.NoError(t, err)
	assert.Equal(t, "chrome", caps["browserName"])
	opts, ok := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
	require.True(t, ok)
	assert.Contains(t, opts.Args, "--no-sandbox")
	assert.Contains(t, opts.Args, "--window-size=1920,1080")
	assert.NotContains(t, opts.Args, "--headless")

	cfg.Headless = true
	caps, err = browserCapabilities(cfg)
	require.NoError(t, err)
	opts = caps[chrome.CapabilitiesKey].(chrome.Capabilities)
	assert.Contains(t, opts.Args, "--headless")
}

func TestFirefoxCapabilities(t *testing.T) {
	cfg := memoryConfig()
	cfg.Browser = config.BrowserFirefox
	cfg.Headless = true

	caps, err := browserCapabilities(cfg)
	require.NoError(t, err)
	assert.Equal(t, "firefox", caps["browserName"])
	opts, ok := caps[firefox.CapabilitiesKey].(firefox.Capabilities)
	require.True(t, ok)
	assert.Contains(t, opts.Args, "-headless")
	assert.Contains(t, opts.Args, "--width=1920")
}

func TestEdgeCapabilities(t *testing.T) {
	cfg := memoryConfig()
	cfg.Browser = config.BrowserEdge
	cfg.Headless = true

	caps, err := browserCapabilities(cfg)
	require.NoError(t, err)
	assert.Equal(t, "MicrosoftEdge", caps["browserName"])
	opts, ok := caps["ms:edgeOptions"].(map[string]interface{})
	require.True(t, ok)
	args, ok := opts["args"].([]string)
	require.True(t, ok)
	assert.Contains(t, args, "--headless")
}

func TestUnsupportedBrowserCapabilities(t *testing.T) {
	cfg := memoryConfig()
	cfg.Browser = config.BrowserKind("netscape")

	_, err := browserCapabilities(cfg)
	require.Error(t, err)
	assert.Equal(t, "unsupported browser: netscape", err.Error())
}
