package wlclient

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

func stateArray(values ...uint32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	return data
}

func collectToplevels() (*toplevelTracker, *[]shell.ToplevelEvent) {
	var events []shell.ToplevelEvent
	t := newToplevelTracker(nil, func(e shell.ToplevelEvent) {
		events = append(events, e)
	})
	return t, &events
}

func TestToplevelCommitIsUnionOfPendingUpdates(t *testing.T) {
	tr, events := collectToplevels()
	h := tr.track(nil)

	tr.setTitle(h, "editor")
	tr.setAppID(h, "org.example.editor")
	tr.setState(h, stateArray(protocols.ToplevelStateActivated))
	tr.commit(h)

	require.Len(t, *events, 1)
	got := (*events)[0]
	assert.Equal(t, shell.ToplevelAdded, got.Kind)
	assert.Equal(t, "editor", got.Toplevel.Title)
	assert.Equal(t, "org.example.editor", got.Toplevel.AppID)
	assert.True(t, got.Toplevel.Focused)
	assert.False(t, got.Toplevel.Fullscreen)

	// the next batch only changes the title; everything else carries over
	tr.setTitle(h, "editor — notes.txt")
	tr.commit(h)

	require.Len(t, *events, 2)
	got = (*events)[1]
	assert.Equal(t, shell.ToplevelUpdated, got.Kind)
	assert.Equal(t, "editor — notes.txt", got.Toplevel.Title)
	assert.Equal(t, "org.example.editor", got.Toplevel.AppID)
	assert.True(t, got.Toplevel.Focused)
}

func TestToplevelMalformedStateDropped(t *testing.T) {
	tr, events := collectToplevels()
	h := tr.track(nil)

	tr.setState(h, stateArray(protocols.ToplevelStateFullscreen))
	tr.commit(h)
	require.Len(t, *events, 1)
	assert.True(t, (*events)[0].Toplevel.Fullscreen)

	// a truncated array must not clear the committed flags
	tr.setState(h, []byte{0x01, 0x02})
	tr.commit(h)
	require.Len(t, *events, 2)
	assert.True(t, (*events)[1].Toplevel.Fullscreen, "malformed state event leaves state unchanged")
}

func TestToplevelClosedRemovesFromAllIndexes(t *testing.T) {
	tr, events := collectToplevels()
	h := tr.track(nil)
	tr.setTitle(h, "doomed")
	tr.commit(h)

	tr.closed(h)

	require.Len(t, *events, 2)
	assert.Equal(t, shell.ToplevelRemoved, (*events)[1].Kind)
	assert.Equal(t, h.id, (*events)[1].Toplevel.ID)

	_, ok := tr.get(h.id)
	assert.False(t, ok)
	assert.Empty(t, tr.all())

	// events after closure are ignored
	tr.setTitle(h, "ghost")
	tr.commit(h)
	tr.closed(h)
	assert.Len(t, *events, 2, "no events for a retired toplevel")
}

func TestToplevelIDsAreMonotonic(t *testing.T) {
	tr, _ := collectToplevels()
	a := tr.track(nil)
	b := tr.track(nil)
	tr.closed(a)
	c := tr.track(nil)

	assert.Less(t, a.id, b.id)
	assert.Less(t, b.id, c.id, "ids never repeat, even after removal")
}

func TestWorkspaceCommitAndRemove(t *testing.T) {
	var events []shell.WorkspaceUpdate
	tr := newWorkspaceTracker(nil, func(u shell.WorkspaceUpdate) {
		events = append(events, u)
	})

	h := tr.track(nil)
	tr.setName(h, "web")
	tr.setCoordinates(h, stateArray(2))
	tr.setState(h, stateArray(protocols.WorkspaceStateActive))
	tr.commitAll()

	require.NotEmpty(t, events)
	assert.Equal(t, shell.WorkspaceAdd, events[0].Kind)
	assert.Equal(t, "web", events[0].Workspace.Name)
	assert.Equal(t, 2, events[0].Workspace.Index)
	assert.Equal(t, shell.Visible(false), events[0].Workspace.Visibility)

	// activation emitted a focus transition as well
	var sawFocus bool
	for _, e := range events {
		if e.Kind == shell.WorkspaceFocus {
			sawFocus = true
			assert.Equal(t, "web", e.New)
		}
	}
	assert.True(t, sawFocus)

	events = events[:0]
	tr.removed(h)
	require.Len(t, events, 1)
	assert.Equal(t, shell.WorkspaceRemove, events[0].Kind)
	assert.Equal(t, h.id, events[0].Workspace.ID)
	assert.Empty(t, tr.all())
}

func TestWorkspaceRename(t *testing.T) {
	var events []shell.WorkspaceUpdate
	tr := newWorkspaceTracker(nil, func(u shell.WorkspaceUpdate) {
		events = append(events, u)
	})

	h := tr.track(nil)
	tr.setName(h, "1")
	tr.commitAll()

	events = events[:0]
	tr.setName(h, "mail")
	tr.commitAll()

	require.Len(t, events, 1)
	assert.Equal(t, shell.WorkspaceRename, events[0].Kind)
	assert.Equal(t, "mail", events[0].Workspace.Name)
}

func TestWorkspaceFocusScopedToGroup(t *testing.T) {
	var events []shell.WorkspaceUpdate
	tr := newWorkspaceTracker(nil, func(u shell.WorkspaceUpdate) {
		events = append(events, u)
	})

	left := tr.trackGroup(nil)
	right := tr.trackGroup(nil)

	a := tr.track(nil)
	tr.setName(a, "code")
	tr.enterGroup(a, left)
	tr.setState(a, stateArray(protocols.WorkspaceStateActive))

	b := tr.track(nil)
	tr.setName(b, "chat")
	tr.enterGroup(b, right)
	tr.commitAll()

	// activating a workspace on the other output must not name the
	// first output's active workspace as the one it replaced
	events = events[:0]
	tr.setState(b, stateArray(protocols.WorkspaceStateActive))
	tr.commitAll()

	var focus *shell.WorkspaceUpdate
	for i := range events {
		if events[i].Kind == shell.WorkspaceFocus {
			focus = &events[i]
		}
	}
	require.NotNil(t, focus)
	assert.Equal(t, "chat", focus.New)
	assert.Empty(t, focus.Old, "no previously active workspace in this group")

	// within one group the transition carries the replaced workspace
	events = events[:0]
	c := tr.track(nil)
	tr.setName(c, "mail")
	tr.enterGroup(c, left)
	tr.setState(c, stateArray(protocols.WorkspaceStateActive))
	tr.setState(a, stateArray())
	tr.commitAll()

	focus = nil
	for i := range events {
		if events[i].Kind == shell.WorkspaceFocus {
			focus = &events[i]
		}
	}
	require.NotNil(t, focus)
	assert.Equal(t, "mail", focus.New)
	assert.Equal(t, "code", focus.Old)
}

func TestWorkspaceMalformedStateDropped(t *testing.T) {
	var events []shell.WorkspaceUpdate
	tr := newWorkspaceTracker(nil, func(u shell.WorkspaceUpdate) {
		events = append(events, u)
	})

	h := tr.track(nil)
	tr.setName(h, "ws")
	tr.setState(h, stateArray(protocols.WorkspaceStateActive))
	tr.setState(h, []byte{0xff, 0xff, 0xff}) // dropped
	tr.commitAll()

	require.NotEmpty(t, events)
	assert.Equal(t, shell.Visible(false), events[0].Workspace.Visibility,
		"malformed state array leaves the pending flags unchanged")
}
