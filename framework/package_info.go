// Package framework contains basic definitions used by the test harness that
// are not specific to any resource type: the logging capability, captured
// per-test output, and nothing else.
package framework
