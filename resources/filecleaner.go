package resources

import (
	"os"

	"github.com/testhive/app-test-harness/framework"
	"github.com/testhive/app-test-harness/framework/apptest"
)

// FileCleaner collects paths of temporary files created during a test and
// removes them when the test's scope unwinds. Removal errors are logged and
// suppressed, like any other teardown error.
type FileCleaner struct {
	logger framework.Logger
	files  []string
}

// NewFileCleaner creates a FileCleaner whose cleanup is bound to the given
// scope.
func NewFileCleaner(t *apptest.T, logger framework.Logger) *FileCleaner {
	if logger == nil {
		logger = framework.NullLogger()
	}
	fc := &FileCleaner{logger: logger}
	t.Defer(fc.cleanup)
	return fc
}

// Add registers a file for removal at scope exit.
func (fc *FileCleaner) Add(path string) {
	fc.files = append(fc.files, path)
}

func (fc *FileCleaner) cleanup() {
	for _, path := range fc.files {
		err := os.Remove(path)
		switch {
		case err == nil:
			fc.logger.Printf("Cleaned up file: %s", path)
		case os.IsNotExist(err):
			// already gone; nothing to report
		default:
			fc.logger.Printf("Error cleaning up file %s: %s", path, err)
		}
	}
}
