package resources

import (
	"github.com/testhive/app-test-harness/apiclient"
	"github.com/testhive/app-test-harness/config"
	"github.com/testhive/app-test-harness/dbmanager"
	"github.com/testhive/app-test-harness/framework"
	"github.com/testhive/app-test-harness/framework/apptest"
)

// Manager provisions resource handles for tests. It is created once per run,
// inside the root test scope, and holds the session-scoped singletons.
//
// Test execution is sequential, so Manager does no locking: a session-scoped
// handle is only ever touched by the single test that is currently running.
type Manager struct {
	cfg    config.Config
	logger framework.Logger
	root   *apptest.T

	sessionBrowser *Browser
	sessionAPI     *apiclient.Client
	sessionDB      *dbmanager.Manager

	apiOptions []apiclient.ClientOption
}

// NewManager creates a Manager. root must be the run's root test scope; the
// release of every session-scoped handle is registered there.
func NewManager(cfg config.Config, logger framework.Logger, root *apptest.T) *Manager {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Manager{cfg: cfg, logger: logger, root: root}
}

// SetAPIClientOptions adds options applied to every API client the manager
// creates, on top of the configured base URL. Harness tests use this to
// shorten retry waits.
func (m *Manager) SetAPIClientOptions(options ...apiclient.ClientOption) {
	m.apiOptions = options
}

// Config returns the run configuration the manager was built with.
func (m *Manager) Config() config.Config { return m.cfg }

// Browser returns a browser session for the given scope. Provisioning fails
// with UnsupportedBrowserError if the configured kind is unknown.
func (m *Manager) Browser(t *apptest.T, scope Scope) (*Browser, error) {
	if scope != ScopeFunction && m.sessionBrowser != nil {
		return m.sessionBrowser, nil
	}
	browser, err := newBrowser(m.cfg, m.logger)
	if err != nil {
		m.logger.Printf("Failed to provision browser (%s scope): %s", scope, err)
		return nil, err
	}
	m.logger.Printf("Browser provisioned (%s, %s scope)", m.cfg.Browser, scope)
	m.bindRelease(t, scope, "browser", browser.Close)
	if scope != ScopeFunction {
		m.sessionBrowser = browser
	}
	return browser, nil
}

// APIClient returns an HTTP session bound to the configured base URL for the
// given scope.
func (m *Manager) APIClient(t *apptest.T, scope Scope) (*apiclient.Client, error) {
	if scope != ScopeFunction && m.sessionAPI != nil {
		return m.sessionAPI, nil
	}
	options := append([]apiclient.ClientOption{
		apiclient.WithLogger(framework.LoggerWithPrefix(m.logger, "[api] ")),
	}, m.apiOptions...)
	client, err := apiclient.New(m.cfg.BaseURL, options...)
	if err != nil {
		m.logger.Printf("Failed to provision HTTP session (%s scope): %s", scope, err)
		return nil, err
	}
	m.logger.Printf("HTTP session provisioned for %s (%s scope)", m.cfg.BaseURL, scope)
	m.bindRelease(t, scope, "HTTP session", func() error {
		client.Close()
		return nil
	})
	if scope != ScopeFunction {
		m.sessionAPI = client
	}
	return client, nil
}

// Database returns a database manager bound to the configured path for the
// given scope.
func (m *Manager) Database(t *apptest.T, scope Scope) (*dbmanager.Manager, error) {
	if scope != ScopeFunction && m.sessionDB != nil {
		return m.sessionDB, nil
	}
	db, err := dbmanager.New(m.cfg.DBPath, framework.LoggerWithPrefix(m.logger, "[db] "))
	if err != nil {
		m.logger.Printf("Failed to provision database (%s scope): %s", scope, err)
		return nil, err
	}
	m.logger.Printf("Database provisioned at %s (%s scope)", m.cfg.DBPath, scope)
	m.bindRelease(t, scope, "database", db.Close)
	if scope != ScopeFunction {
		m.sessionDB = db
	}
	return db, nil
}

// bindRelease registers the handle's release on the scope that owns it: the
// acquiring test for function scope, the root scope otherwise. The release
// runs exactly once, when that scope unwinds; close errors are logged and
// never propagated, so teardown cannot mask a test's own failure.
func (m *Manager) bindRelease(t *apptest.T, scope Scope, kind string, closeFn func() error) {
	owner := t
	if scope != ScopeFunction {
		owner = m.root
	}
	owner.Defer(func() {
		if err := closeFn(); err != nil {
			m.logger.Printf("Error closing %s: %s", kind, err)
			return
		}
		m.logger.Printf("Released %s (%s scope)", kind, scope)
	})
}
