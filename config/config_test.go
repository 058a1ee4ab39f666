package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BrowserChrome, cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "test.db", cfg.DBPath)
	assert.False(t, cfg.RunSlow)
}

func TestBrowserKindSupported(t *testing.T) {
	assert.True(t, BrowserChrome.Supported())
	assert.True(t, BrowserFirefox.Supported())
	assert.True(t, BrowserEdge.Supported())
	assert.False(t, BrowserKind("safari").Supported())
	assert.False(t, BrowserKind("").Supported())
}
