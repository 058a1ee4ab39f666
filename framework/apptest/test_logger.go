package apptest

import (
	"fmt"
	"os"
	"strings"

	"github.com/testhive/app-test-harness/framework"

	"github.com/fatih/color"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

// TestLogger receives status information about each test as the run proceeds,
// and a final notification when the run is over.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

// ConsoleTestLogger prints progress and results to standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleTestErrorColor.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	failed := len(result.Errors) != 0
	if failed {
		_, _ = consoleTestFailedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c ConsoleTestLogger) EndLog(results Results) error {
	if results.OK() {
		_, _ = allTestsPassedColor.Println("All tests passed")
		return nil
	}
	_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "  * %s\n", f.TestID)
	}
	return nil
}

// RunLogTestLogger mirrors failure information into the run log, so the log
// file carries the identifier and failure detail of every failed test. It is
// informational only and never alters a test's outcome.
type RunLogTestLogger struct {
	Logger framework.Logger
}

func (r RunLogTestLogger) TestStarted(id TestID) {}

func (r RunLogTestLogger) TestError(id TestID, err error) {
	r.Logger.Printf("FAILED %s", TestFailure{ID: id, Err: err})
}

func (r RunLogTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
}

func (r RunLogTestLogger) TestSkipped(id TestID, reason string) {}

func (r RunLogTestLogger) EndLog(results Results) error {
	r.Logger.Printf("%d tests run, %d failed", len(results.Tests), len(results.Failures))
	return nil
}

// MultiTestLogger broadcasts to several loggers, typically the console plus
// the run log and an optional JUnit writer.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m.Loggers {
		l.TestStarted(id)
	}
}

func (m *MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m.Loggers {
		l.TestError(id, err)
	}
}

func (m *MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m *MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m.Loggers {
		l.TestSkipped(id, reason)
	}
}

func (m *MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
