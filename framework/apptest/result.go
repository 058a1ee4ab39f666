package apptest

import (
	"fmt"
	"strings"
)

// Results accumulates the outcome of an entire run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

// TestResult is the outcome of a single test scope.
type TestResult struct {
	TestID TestID
	Errors []error
}

// OK returns true if no test failed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID is the path of a test scope within the suite tree.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns the ID of a child scope.
func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// TestFailure pairs a test ID with one of its errors.
type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
