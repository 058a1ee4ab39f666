package runlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLinesBelowLevelAreDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := NewForTesting(&buf, LevelWarn)
	logger.Debugf("not this")
	logger.Infof("nor this")
	logger.Warnf("but this")
	logger.Errorf("and this")

	out := buf.String()
	assert.NotContains(t, out, "not this")
	assert.NotContains(t, out, "nor this")
	assert.Contains(t, out, "but this")
	assert.Contains(t, out, "and this")
}

func TestLineFormatIncludesComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewForTesting(&buf, LevelInfo).WithComponent("provisioner")
	logger.Infof("browser ready")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, " - provisioner - INFO - browser ready")
}

func TestPrintfWritesAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewForTesting(&buf, LevelInfo)
	logger.Printf("hello %s", "there")
	logger.Println("and", "more")

	out := buf.String()
	assert.Contains(t, out, "INFO - hello there")
	assert.Contains(t, out, "INFO - and more")
}

func TestInitCreatesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	level := LevelInfo
	logger, path, err := Init(Options{Dir: dir, Console: &bytes.Buffer{}, Level: &level})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_run_"))
	assert.True(t, strings.HasSuffix(path, ".log"))

	logger.Infof("recorded")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recorded")
}

func TestBannerWritesRuleLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewForTesting(&buf, LevelInfo)
	logger.Banner("Test session started at %s", "2026-01-02 03:04:05")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], strings.Repeat("=", 80))
	assert.Contains(t, lines[1], "Test session started at 2026-01-02 03:04:05")
	assert.Contains(t, lines[2], strings.Repeat("=", 80))
}
