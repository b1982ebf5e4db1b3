package clipboard

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/internal/shell"
)

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard.db")

	h, err := OpenHistory(path, 10)
	require.NoError(t, err)

	require.NoError(t, h.Append(shell.ClipboardItem{Kind: shell.ClipboardText, Mime: "text/plain", Text: "first"}))
	require.NoError(t, h.Append(shell.ClipboardItem{Kind: shell.ClipboardText, Mime: "text/plain", Text: "second"}))
	// image items are not persisted
	require.NoError(t, h.Append(shell.ClipboardItem{Kind: shell.ClipboardImage, Mime: "image/png", Data: []byte{1}}))
	require.NoError(t, h.Close())

	h, err = OpenHistory(path, 10)
	require.NoError(t, err)
	defer h.Close()

	items, err := h.Load()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Text)
	assert.Equal(t, "second", items[1].Text)
}

func TestHistoryCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard.db")

	h, err := OpenHistory(path, 3)
	require.NoError(t, err)
	defer h.Close()

	for _, text := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, h.Append(shell.ClipboardItem{Kind: shell.ClipboardText, Mime: "text/plain", Text: text}))
	}

	items, err := h.Load()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].Text)
	assert.Equal(t, "e", items[2].Text)
}
