// Package fixtures reads test-data files from the harness's data directory.
// Files may be JSON or YAML; either way the caller gets the same unmarshaled
// result. The harness only ever reads fixture files, never writes them.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
)

// FixtureNotFoundError is returned when a requested fixture file does not
// exist in the data directory.
type FixtureNotFoundError struct {
	Path string
}

func (e FixtureNotFoundError) Error() string {
	return fmt.Sprintf("fixture file not found: %s", e.Path)
}

// Load reads the named file from dir and unmarshals it into target.
func Load(dir, name string, target interface{}) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FixtureNotFoundError{Path: path}
		}
		return fmt.Errorf("cannot read fixture file %s: %w", path, err)
	}
	if err := ParseJSONOrYAML(data, target); err != nil {
		return fmt.Errorf("cannot parse fixture file %s: %w", path, err)
	}
	return nil
}
