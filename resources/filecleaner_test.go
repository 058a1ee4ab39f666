package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testhive/app-test-harness/framework/apptest"
)

func TestFileCleanerRemovesFilesAtScopeExit(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.txt")
	removed := filepath.Join(dir, "removed.txt")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(removed, []byte("x"), 0644))

	log := &lineLogger{}
	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		root.Run("uses temp file", func(t1 *apptest.T) {
			fc := NewFileCleaner(t1, log)
			fc.Add(removed)

			// still present while the test runs
			_, err := os.Stat(removed)
			require.NoError(t1, err)
		})

		// gone once the owning scope unwound
		_, err := os.Stat(removed)
		assert.True(root, os.IsNotExist(err))
	})
	require.True(t, results.OK())

	_, err := os.Stat(kept)
	assert.NoError(t, err, "unregistered files must be left alone")
	assert.Equal(t, 1, log.countContaining("Cleaned up file"))
}

func TestFileCleanerIgnoresAlreadyMissingFiles(t *testing.T) {
	log := &lineLogger{}
	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		fc := NewFileCleaner(root, log)
		fc.Add(filepath.Join(t.TempDir(), "never_created.txt"))
	})
	require.True(t, results.OK())
	assert.Equal(t, 0, log.countContaining("Error cleaning up"))
	assert.Equal(t, 0, log.countContaining("Cleaned up file"))
}

func TestFileCleanerRunsOnFailureToo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	results := apptest.Run(apptest.TestConfiguration{}, func(root *apptest.T) {
		root.Run("failing", func(t1 *apptest.T) {
			fc := NewFileCleaner(t1, nil)
			fc.Add(path)
			t1.Errorf("deliberate failure")
		})
	})
	assert.False(t, results.OK())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
