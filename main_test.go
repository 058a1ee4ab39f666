package main

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testhive/app-test-harness/framework/runlog"
)

func TestSessionFinishedBannerUsesFinishTime(t *testing.T) {
	var buf bytes.Buffer
	logger := runlog.NewForTesting(&buf, runlog.LevelInfo)

	start := time.Now()
	func() {
		defer sessionFinishedBanner(logger)
		time.Sleep(1100 * time.Millisecond)
	}()

	m := regexp.MustCompile(`Test session finished at (.+)`).FindStringSubmatch(buf.String())
	require.Len(t, m, 2)
	stamp, err := time.ParseInLocation(bannerTimestampFormat, strings.TrimSpace(m[1]), time.Local)
	require.NoError(t, err)

	// the banner must carry the time the session ended, which is at least a
	// full second after it started
	assert.False(t, stamp.Before(start.Truncate(time.Second).Add(time.Second)))
}

func TestListenAddr(t *testing.T) {
	addr, err := listenAddr("http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8000", addr)

	_, err = listenAddr("http://localhost")
	assert.Error(t, err)

	_, err = listenAddr("://not a url")
	assert.Error(t, err)
}
