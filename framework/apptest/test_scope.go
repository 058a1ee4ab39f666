package apptest

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/testhive/app-test-harness/framework"
)

type environment struct {
	config  TestConfiguration
	results Results
}

// T represents a test scope. It is deliberately close to Go's testing.T, so
// that assertion libraries written against testing.T work against it too.
type T struct {
	env         *environment
	id          TestID
	context     interface{}
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	cleanups    []func()
	errors      []error
}

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional function for determining which tests to run based
	// on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Context is an optional value of any type defined by the application
	// which can be accessed from tests.
	Context interface{}

	// RunSlow enables tests that declare themselves slow with (*T).Slow.
	// When false, such tests are skipped.
	RunSlow bool
}

// Run starts a top-level test scope and returns the accumulated results once
// every test inside it has finished.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	env := &environment{config: config}
	t := &T{env: env, context: config.Context}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) (result TestResult) {
	result.TestID = t.id
	defer func() {
		if r := recover(); r != nil && !t.skipped {
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.env.config.TestLogger.TestError(t.id, addError)
			}
		}
		result.Errors = t.errors
		// skipped tests are reported through TestSkipped and do not count as
		// having run
		if !t.skipped {
			if t.failed {
				t.env.results.Failures = append(t.env.results.Failures, result)
			}
			t.env.results.Tests = append(t.env.results.Tests, result)
		}

		// Cleanups run last, in reverse registration order, no matter how the
		// scope unwound. A released resource must not be able to fail the
		// tests that already finished, so panics here are contained as well.
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			runCleanup(t.cleanups[i])
		}
	}()

	action(t)
	return result
}

func runCleanup(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope, with its own cleanup list and result.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)

	t.env.config.TestLogger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter(id) {
		t.env.config.TestLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	child := &T{id: id, env: t.env, context: t.context}
	t.debugLogger.AddChildLogger(&child.debugLogger)
	result := child.run(action)
	t.debugLogger.RemoveChildLogger(&child.debugLogger)
	if child.skipped {
		t.env.config.TestLogger.TestSkipped(id, child.skipReason)
	} else {
		t.env.config.TestLogger.TestFinished(id, result, child.debugLogger.Output())
	}
}

// Errorf reports a test failure without terminating the test. It is part of
// this type's implementation of assert.TestingT, so testify assertions can
// report through it.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := stripTestifyTrace(fmt.Errorf(format, args...))
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, err)
}

// FailNow causes the test to immediately terminate and be marked as failed.
// Part of the require.TestingT interface.
func (t *T) FailNow() {
	panic(t)
}

// Failed reports whether the test has failed so far. Cleanup functions can
// use this to act on the test's outcome, e.g. capturing diagnostics.
func (t *T) Failed() bool {
	return t.failed
}

// Skip causes the test to immediately terminate and be marked as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Slow declares the current test slow. If the run was not configured to
// include slow tests, the test is skipped on the spot.
func (t *T) Slow() {
	if !t.env.config.RunSlow {
		t.SkipWithReason("slow test: enable with --slow")
	}
}

// Debug writes a message to the captured output for this test scope.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger whose output is captured for this test scope
// and attached to the test's result. While a subtest is running, output sent
// here is routed to the subtest instead; see framework.CapturingLogger.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a cleanup function which is guaranteed to be called exactly
// once when this test scope exits for any reason. Unlike a Go defer
// statement, Defer can be used from within helper functions; this is how
// resource provisioners bind a handle's release to the scope that acquired it.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns the application-defined context value, if any, that was
// specified in the TestConfiguration.
func (t *T) Context() interface{} {
	return t.context
}
