package compositor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/thiagokokada/hyprland-go"
	"github.com/thiagokokada/hyprland-go/event"

	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/shell"
)

// Hyprland uses hyprland-go: the request client for listing and dispatch,
// the event client for the socket2 stream.
type Hyprland struct {
	client *hyprland.RequestClient

	mu      sync.Mutex
	focused string
}

// NewHyprland creates a hyprland backend for the running instance.
func NewHyprland() (*Hyprland, error) {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") == "" {
		return nil, ErrUnavailable
	}
	return &Hyprland{client: hyprland.MustClient()}, nil
}

// Name implements Backend.
func (h *Hyprland) Name() string {
	return "hyprland"
}

// Workspaces implements Backend.
func (h *Hyprland) Workspaces() ([]shell.Workspace, error) {
	workspaces, err := h.client.Workspaces()
	if err != nil {
		return nil, fmt.Errorf("listing hyprland workspaces: %w", err)
	}
	monitors, err := h.client.Monitors()
	if err != nil {
		return nil, fmt.Errorf("listing hyprland monitors: %w", err)
	}
	return normalizeHyprland(workspaces, monitors), nil
}

// Focus implements Backend.
func (h *Hyprland) Focus(ref Ref) error {
	var arg string
	switch {
	case ref.Name != "":
		arg = "name:" + ref.Name
	case ref.ID != 0:
		arg = strconv.FormatInt(ref.ID, 10)
	default:
		arg = strconv.Itoa(ref.Index)
	}
	if _, err := h.client.Dispatch("workspace " + arg); err != nil {
		return fmt.Errorf("focusing hyprland workspace %s: %w", arg, err)
	}
	return nil
}

// hyprlandEvents adapts the socket2 stream onto the normalized updates.
type hyprlandEvents struct {
	event.DefaultEventHandler
	backend *Hyprland
	list    func() ([]shell.Workspace, error)
	ctx     context.Context
	ch      chan<- shell.WorkspaceUpdate
}

func (e *hyprlandEvents) send(update shell.WorkspaceUpdate) {
	select {
	case e.ch <- update:
	case <-e.ctx.Done():
	}
}

// named looks a workspace up by name so updates carry monitor and
// visibility, not just the name the event delivers.
func (e *hyprlandEvents) named(name string) shell.Workspace {
	if all, err := e.list(); err == nil {
		for _, ws := range all {
			if ws.Name == name {
				return ws
			}
		}
	}
	return shell.Workspace{Name: name}
}

func (e *hyprlandEvents) Workspace(name event.WorkspaceName) {
	e.backend.mu.Lock()
	old := e.backend.focused
	e.backend.focused = string(name)
	e.backend.mu.Unlock()

	e.send(shell.WorkspaceUpdate{
		Kind:      shell.WorkspaceFocus,
		Workspace: e.named(string(name)),
		Old:       old,
		New:       string(name),
	})
}

func (e *hyprlandEvents) CreateWorkspace(name event.WorkspaceName) {
	e.send(shell.WorkspaceUpdate{Kind: shell.WorkspaceAdd, Workspace: e.named(string(name))})
}

func (e *hyprlandEvents) DestroyWorkspace(name event.WorkspaceName) {
	e.send(shell.WorkspaceUpdate{Kind: shell.WorkspaceRemove, Workspace: shell.Workspace{Name: string(name)}})
}

func (e *hyprlandEvents) MoveWorkspace(mv event.MoveWorkspace) {
	ws := e.named(string(mv.WorkspaceName))
	ws.Monitor = string(mv.MonitorName)
	e.send(shell.WorkspaceUpdate{Kind: shell.WorkspaceMove, Workspace: ws})
}

func (e *hyprlandEvents) OpenWindow(o event.OpenWindow) {
	e.send(shell.WorkspaceUpdate{
		Kind:      shell.WorkspaceWindows,
		Workspace: e.named(string(o.WorkspaceName)),
	})
}

// closewindow does not say which workspace lost the window, so the count
// change is delivered as a wholesale snapshot.
func (e *hyprlandEvents) CloseWindow(c event.CloseWindow) {
	if all, err := e.list(); err == nil {
		e.send(shell.WorkspaceUpdate{Kind: shell.WorkspaceInit, All: all})
	}
}

// Subscribe implements Backend.
func (h *Hyprland) Subscribe(ctx context.Context, ch chan<- shell.WorkspaceUpdate) error {
	client := event.MustClient()

	if initial, err := h.Workspaces(); err == nil {
		select {
		case ch <- shell.WorkspaceUpdate{Kind: shell.WorkspaceInit, All: initial}:
		case <-ctx.Done():
			client.Close()
			return ctx.Err()
		}
	}

	handler := &hyprlandEvents{backend: h, list: h.Workspaces, ctx: ctx, ch: ch}
	go func() {
		defer client.Close()
		err := client.Subscribe(ctx, handler,
			event.EventWorkspace,
			event.EventCreateWorkspace,
			event.EventDestroyWorkspace,
			event.EventMoveWorkspace,
			event.EventOpenWindow,
			event.EventCloseWindow,
		)
		if err != nil && ctx.Err() == nil {
			logger.Error("hyprland event stream closed", "err", err)
		}
	}()
	return nil
}

func normalizeHyprland(workspaces []hyprland.Workspace, monitors []hyprland.Monitor) []shell.Workspace {
	type active struct {
		focused bool
	}
	activeByID := make(map[int]active, len(monitors))
	for _, m := range monitors {
		activeByID[m.ActiveWorkspace.Id] = active{focused: m.Focused}
	}

	result := make([]shell.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		visibility := shell.Hidden()
		if a, ok := activeByID[ws.Id]; ok {
			visibility = shell.Visible(a.focused)
		}
		result = append(result, shell.Workspace{
			ID:         int64(ws.Id),
			Index:      ws.Id,
			Name:       ws.Name,
			Monitor:    ws.Monitor,
			Visibility: visibility,
			Windows:    ws.Windows,
		})
	}
	return result
}
