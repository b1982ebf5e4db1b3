package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/internal/shell"
)

func TestCacheReferenceCounting(t *testing.T) {
	c := NewCache()
	for i := 0; i < 3; i++ {
		c.AddSubscriber()
	}

	item, added := c.Insert("text/plain", shell.ClipboardText, "hello", nil)
	require.True(t, added)

	// two decrements leave the entry retrievable
	assert.False(t, c.Unref(item.ID))
	assert.False(t, c.Unref(item.ID))
	_, ok := c.Get(item.ID)
	assert.True(t, ok)

	// the third decrement removes it
	assert.True(t, c.Unref(item.ID))
	_, ok = c.Get(item.ID)
	assert.False(t, ok)
}

func TestCacheUnconditionalRemove(t *testing.T) {
	c := NewCache()
	for i := 0; i < 5; i++ {
		c.AddSubscriber()
	}

	item, _ := c.Insert("text/plain", shell.ClipboardText, "hello", nil)
	assert.True(t, c.Remove(item.ID), "remove ignores the reference count")
	_, ok := c.Get(item.ID)
	assert.False(t, ok)
	assert.False(t, c.Remove(item.ID), "second remove finds nothing")
}

func TestCacheDeduplication(t *testing.T) {
	c := NewCache()
	c.AddSubscriber()

	first, added := c.Insert("text/plain", shell.ClipboardText, "hello", nil)
	require.True(t, added)

	second, added := c.Insert("text/plain", shell.ClipboardText, "hello", nil)
	assert.False(t, added, "equal (mime, value) re-activates, not re-adds")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, c.Len())

	third, added := c.Insert("text/plain", shell.ClipboardText, "world", nil)
	assert.True(t, added)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, 2, c.Len())
}

func TestCacheOldestFirstEnumeration(t *testing.T) {
	c := NewCache()
	a, _ := c.Insert("text/plain", shell.ClipboardText, "a", nil)
	b, _ := c.Insert("text/plain", shell.ClipboardText, "b", nil)
	d, _ := c.Insert("text/plain", shell.ClipboardText, "c", nil)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []uint64{a.ID, b.ID, d.ID}, []uint64{items[0].ID, items[1].ID, items[2].ID})
}

func TestCacheFindByValue(t *testing.T) {
	c := NewCache()
	item, _ := c.Insert("image/png", shell.ClipboardImage, "", []byte{1, 2, 3})

	found, ok := c.Find(shell.ClipboardItem{Mime: "image/png", Kind: shell.ClipboardImage, Data: []byte{1, 2, 3}})
	require.True(t, ok)
	assert.Equal(t, item.ID, found.ID)

	_, ok = c.Find(shell.ClipboardItem{Mime: "image/png", Kind: shell.ClipboardImage, Data: []byte{9}})
	assert.False(t, ok)
}

func TestClassifyPreferenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		mimes    []string
		wantMime string
		wantKind shell.ClipboardKind
		wantOK   bool
	}{
		{
			name:     "utf8 text wins over image",
			mimes:    []string{"image/png", "text/plain;charset=utf-8"},
			wantMime: "text/plain;charset=utf-8",
			wantKind: shell.ClipboardText,
			wantOK:   true,
		},
		{
			name:     "plain text before generic text",
			mimes:    []string{"text/html", "text/plain"},
			wantMime: "text/plain",
			wantKind: shell.ClipboardText,
			wantOK:   true,
		},
		{
			name:     "text prefix fallback",
			mimes:    []string{"text/html"},
			wantMime: "text/html",
			wantKind: shell.ClipboardText,
			wantOK:   true,
		},
		{
			name:     "png before other images",
			mimes:    []string{"image/jpeg", "image/png"},
			wantMime: "image/png",
			wantKind: shell.ClipboardImage,
			wantOK:   true,
		},
		{
			name:     "image prefix fallback",
			mimes:    []string{"image/webp"},
			wantMime: "image/webp",
			wantKind: shell.ClipboardImage,
			wantOK:   true,
		},
		{
			name:   "nothing usable",
			mimes:  []string{"application/pdf"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, kind, ok := Classify(tt.mimes)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantMime, mime)
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestHasSentinel(t *testing.T) {
	assert.True(t, HasSentinel([]string{"text/plain", SentinelMime}))
	assert.False(t, HasSentinel([]string{"text/plain"}))
}
