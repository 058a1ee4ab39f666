package apptest

import (
	"errors"
	"regexp"
	"strings"
)

// The testify assert/require functions embed their own "Error Trace" block in
// failure messages. Those frames point into testify internals rather than the
// suite code, so they are noise in our reports; the message proper starts
// after the "Error:" label.
var testifyTraceRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

func stripTestifyTrace(err error) error {
	message := err.Error()
	if !strings.Contains(message, "Error Trace:") {
		return err
	}
	message = strings.TrimSpace(testifyTraceRegex.ReplaceAllLiteralString(message, ""))
	return errors.New(message)
}
