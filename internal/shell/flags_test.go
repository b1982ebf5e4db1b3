package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibilityRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		flags WorkspaceFlags
		want  Visibility
	}{
		{
			name:  "active only is visible unfocused",
			flags: WorkspaceFlagActive,
			want:  Visible(false),
		},
		{
			name:  "active and focused is visible focused",
			flags: WorkspaceFlagActive | WorkspaceFlagFocused,
			want:  Visible(true),
		},
		{
			name:  "empty is hidden",
			flags: 0,
			want:  Hidden(),
		},
		{
			name:  "hidden bit wins over active",
			flags: WorkspaceFlagActive | WorkspaceFlagHidden,
			want:  Hidden(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flags.ToVisibility()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagsFromVisibility(t *testing.T) {
	assert.Equal(t, WorkspaceFlagActive, FlagsFromVisibility(Visible(false)))
	assert.Equal(t, WorkspaceFlagActive|WorkspaceFlagFocused, FlagsFromVisibility(Visible(true)))
	assert.Equal(t, WorkspaceFlags(0), FlagsFromVisibility(Hidden()))

	// encode then decode returns the same visibility
	for _, v := range []Visibility{Hidden(), Visible(false), Visible(true)} {
		assert.Equal(t, v, FlagsFromVisibility(v).ToVisibility())
	}
}

func TestVisibleImpliesFocusedNeverHidden(t *testing.T) {
	v := Visible(true)
	assert.True(t, v.Visible)
	assert.True(t, v.Focused)

	h := Hidden()
	assert.False(t, h.Visible)
	assert.False(t, h.Focused)
}

func TestClipboardItemSame(t *testing.T) {
	a := ClipboardItem{ID: 1, Mime: "text/plain", Kind: ClipboardText, Text: "hello"}
	b := ClipboardItem{ID: 2, Mime: "text/plain", Kind: ClipboardText, Text: "hello"}
	c := ClipboardItem{ID: 3, Mime: "text/plain", Kind: ClipboardText, Text: "world"}

	assert.True(t, a.Same(b), "same mime and value match regardless of id")
	assert.False(t, a.Same(c))

	img1 := ClipboardItem{ID: 4, Mime: "image/png", Kind: ClipboardImage, Data: []byte{1, 2, 3}}
	img2 := ClipboardItem{ID: 5, Mime: "image/png", Kind: ClipboardImage, Data: []byte{1, 2, 3}}
	img3 := ClipboardItem{ID: 6, Mime: "image/png", Kind: ClipboardImage, Data: []byte{1, 2, 4}}
	assert.True(t, img1.Same(img2))
	assert.False(t, img1.Same(img3))
	assert.False(t, a.Same(img1))
}
