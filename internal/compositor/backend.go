// Package compositor implements the compositor-specific IPC fallbacks used
// when the generic workspace protocol is unavailable. Each backend
// translates its native socket protocol into the normalized
// shell.Workspace/WorkspaceUpdate surface.
package compositor

import (
	"context"
	"errors"
	"os"

	"github.com/panelkit/panelkit/internal/shell"
)

// ErrUnavailable is returned when no compositor IPC socket can be found.
var ErrUnavailable = errors.New("no compositor IPC available")

// Ref identifies a workspace to focus. Exactly one of Name or ID/Index is
// consulted, Name first.
type Ref struct {
	ID    int64
	Index int
	Name  string
}

// Backend is the capability set every compositor IPC adapter implements.
type Backend interface {
	// Name identifies the backend ("niri", "sway", "hyprland").
	Name() string
	// Workspaces lists the current workspaces.
	Workspaces() ([]shell.Workspace, error)
	// Focus switches to the referenced workspace.
	Focus(ref Ref) error
	// Subscribe streams normalized workspace updates onto ch until ctx is
	// cancelled. An Init update with the full list is sent first.
	Subscribe(ctx context.Context, ch chan<- shell.WorkspaceUpdate) error
}

// Detect picks a backend from the environment. An explicit override
// ("niri", "sway", "hyprland") wins; otherwise the first matching socket
// environment variable decides. No socket means only the generic protocol
// can be used.
func Detect(override string) (Backend, error) {
	switch override {
	case "niri":
		return NewNiri(os.Getenv("NIRI_SOCKET")), nil
	case "sway":
		return NewSway(os.Getenv("SWAYSOCK")), nil
	case "hyprland":
		return NewHyprland()
	case "":
	default:
		return nil, ErrUnavailable
	}

	if socket := os.Getenv("NIRI_SOCKET"); socket != "" {
		return NewNiri(socket), nil
	}
	if socket := os.Getenv("SWAYSOCK"); socket != "" {
		return NewSway(socket), nil
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return NewHyprland()
	}
	return nil, ErrUnavailable
}
