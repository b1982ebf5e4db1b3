package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	SetConfigPath(filepath.Join(t.TempDir(), "missing.toml"))
	defer SetConfigPath("")

	// a missing explicit file is not fatal; defaults apply
	_ = Init()
	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 100, c.Clipboard.HistorySize)
	assert.False(t, c.Clipboard.Persist)
	assert.Empty(t, c.Compositor)
}

func TestInitReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelkit.toml")
	content := `
compositor = "sway"

[clipboard]
history_size = 25
persist = true

[logging]
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	SetConfigPath(path)
	defer SetConfigPath("")
	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, "sway", c.Compositor)
	assert.Equal(t, 25, c.Clipboard.HistorySize)
	assert.True(t, c.Clipboard.Persist)
	assert.Equal(t, "debug", c.Logging.LogLevel)
}
