package compositor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiagokokada/hyprland-go/event"

	"github.com/panelkit/panelkit/internal/shell"
)

func strPtr(s string) *string { return &s }

func TestNiriWorkspacesChangedNormalization(t *testing.T) {
	// With only the IPC fallback bound, a workspaces-changed event with
	// one active, unfocused workspace "2" on eDP-1 must normalize to a
	// visible, unfocused workspace on that monitor.
	var state []niriWorkspace
	ev := niriEvent{
		WorkspacesChanged: &struct {
			Workspaces []niriWorkspace `json:"workspaces"`
		}{
			Workspaces: []niriWorkspace{{
				ID:       7,
				Idx:      2,
				Name:     strPtr("2"),
				Output:   strPtr("eDP-1"),
				IsActive: true,
			}},
		},
	}

	updates := translateNiri(&state, ev)
	require.Len(t, updates, 1)
	require.Equal(t, shell.WorkspaceInit, updates[0].Kind)
	require.Len(t, updates[0].All, 1)

	ws := updates[0].All[0]
	assert.Equal(t, "2", ws.Name)
	assert.Equal(t, "eDP-1", ws.Monitor)
	assert.Equal(t, shell.Visible(false), ws.Visibility)
}

func TestNiriActivationTracksFocus(t *testing.T) {
	state := []niriWorkspace{
		{ID: 1, Idx: 1, Name: strPtr("one"), IsActive: true, IsFocused: true},
		{ID: 2, Idx: 2, Name: strPtr("two")},
	}

	ev := niriEvent{
		WorkspaceActivated: &struct {
			ID      int64 `json:"id"`
			Focused bool  `json:"focused"`
		}{ID: 2, Focused: true},
	}

	updates := translateNiri(&state, ev)
	require.Len(t, updates, 1)
	assert.Equal(t, shell.WorkspaceFocus, updates[0].Kind)
	assert.Equal(t, "one", updates[0].Old)
	assert.Equal(t, "two", updates[0].New)
	assert.Equal(t, shell.Visible(true), updates[0].Workspace.Visibility)
}

func TestNiriUnnamedWorkspaceUsesIndex(t *testing.T) {
	ws := niriWorkspace{ID: 3, Idx: 4}
	assert.Equal(t, "4", niriName(ws))
}

func TestNiriUrgency(t *testing.T) {
	state := []niriWorkspace{{ID: 5, Idx: 1, Name: strPtr("mail")}}
	ev := niriEvent{
		WorkspaceUrgencyChanged: &struct {
			ID     int64 `json:"id"`
			Urgent bool  `json:"urgent"`
		}{ID: 5, Urgent: true},
	}

	updates := translateNiri(&state, ev)
	require.Len(t, updates, 1)
	assert.Equal(t, shell.WorkspaceUrgent, updates[0].Kind)
	assert.Equal(t, "mail", updates[0].Workspace.Name)
}

func TestSwayEventTranslation(t *testing.T) {
	tests := []struct {
		name   string
		event  swayWorkspaceEvent
		kind   shell.WorkspaceUpdateKind
		verify func(t *testing.T, u shell.WorkspaceUpdate)
	}{
		{
			name: "focus carries old and new names",
			event: swayWorkspaceEvent{
				Change:  "focus",
				Current: &swayWorkspace{Num: 2, Name: "2", Visible: true, Focused: true, Output: "eDP-1"},
				Old:     &swayWorkspace{Num: 1, Name: "1"},
			},
			kind: shell.WorkspaceFocus,
			verify: func(t *testing.T, u shell.WorkspaceUpdate) {
				assert.Equal(t, "1", u.Old)
				assert.Equal(t, "2", u.New)
				assert.Equal(t, shell.Visible(true), u.Workspace.Visibility)
			},
		},
		{
			name: "init adds",
			event: swayWorkspaceEvent{
				Change:  "init",
				Current: &swayWorkspace{Num: 3, Name: "3", Output: "DP-2"},
			},
			kind: shell.WorkspaceAdd,
			verify: func(t *testing.T, u shell.WorkspaceUpdate) {
				assert.Equal(t, "DP-2", u.Workspace.Monitor)
				assert.Equal(t, shell.Hidden(), u.Workspace.Visibility)
			},
		},
		{
			name: "empty removes",
			event: swayWorkspaceEvent{
				Change:  "empty",
				Current: &swayWorkspace{Num: 3, Name: "3"},
			},
			kind: shell.WorkspaceRemove,
		},
		{
			name: "visible but unfocused",
			event: swayWorkspaceEvent{
				Change:  "urgent",
				Current: &swayWorkspace{Num: 2, Name: "2", Visible: true, Urgent: true, Output: "eDP-1"},
			},
			kind: shell.WorkspaceUrgent,
			verify: func(t *testing.T, u shell.WorkspaceUpdate) {
				assert.Equal(t, shell.Visible(false), u.Workspace.Visibility)
			},
		},
		{
			name:  "unknown change",
			event: swayWorkspaceEvent{Change: "reload"},
			kind:  shell.WorkspaceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := translateSway(tt.event)
			assert.Equal(t, tt.kind, u.Kind)
			if tt.verify != nil {
				tt.verify(t, u)
			}
		})
	}
}

func TestHyprlandWindowEventsUpdateCounts(t *testing.T) {
	ch := make(chan shell.WorkspaceUpdate, 4)
	handler := &hyprlandEvents{
		backend: &Hyprland{},
		list: func() ([]shell.Workspace, error) {
			return []shell.Workspace{
				{ID: 1, Name: "1", Monitor: "DP-1", Visibility: shell.Visible(true), Windows: 3},
				{ID: 2, Name: "2", Monitor: "DP-1", Windows: 1},
			}, nil
		},
		ctx: context.Background(),
		ch:  ch,
	}

	handler.OpenWindow(event.OpenWindow{Address: "0xabc", Class: "foot", Title: "shell", WorkspaceName: "1"})
	u := <-ch
	assert.Equal(t, shell.WorkspaceWindows, u.Kind)
	assert.Equal(t, 3, u.Workspace.Windows)
	assert.Equal(t, "DP-1", u.Workspace.Monitor)

	// the close event carries no workspace, so the count change arrives
	// as a wholesale snapshot
	handler.CloseWindow(event.CloseWindow{Address: "0xabc"})
	u = <-ch
	assert.Equal(t, shell.WorkspaceInit, u.Kind)
	assert.Len(t, u.All, 2)
}

func TestDetectWithoutSockets(t *testing.T) {
	t.Setenv("NIRI_SOCKET", "")
	t.Setenv("SWAYSOCK", "")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")

	_, err := Detect("")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDetectPrefersOverride(t *testing.T) {
	t.Setenv("NIRI_SOCKET", "/tmp/niri.sock")
	t.Setenv("SWAYSOCK", "/tmp/sway.sock")

	b, err := Detect("sway")
	require.NoError(t, err)
	assert.Equal(t, "sway", b.Name())

	b, err = Detect("")
	require.NoError(t, err)
	assert.Equal(t, "niri", b.Name())

	_, err = Detect("bogus")
	assert.ErrorIs(t, err, ErrUnavailable)
}
