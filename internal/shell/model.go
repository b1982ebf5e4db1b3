// Package shell defines the normalized domain model exposed to panel
// consumers. Every protocol backend (generic Wayland extensions or a
// compositor-specific IPC socket) translates into these types, so
// downstream code never sees wire-level state.
package shell

// Output is a connected display as reported by the compositor.
type Output struct {
	Name        string
	Description string
	X           int32
	Y           int32
	Width       int32
	Height      int32
}

// Toplevel is a compositor-tracked application window. ID is process-unique
// and monotonic; it never repeats within a session.
type Toplevel struct {
	ID         uint64
	Title      string
	AppID      string
	Fullscreen bool
	Focused    bool
	Output     string
}

// Visibility describes whether a workspace is shown on its monitor and
// whether it holds keyboard focus. Focused implies Visible; use the
// constructors to keep that invariant.
type Visibility struct {
	Visible bool
	Focused bool
}

// Hidden returns the visibility of a workspace not shown on any monitor.
func Hidden() Visibility {
	return Visibility{}
}

// Visible returns the visibility of a workspace shown on its monitor.
func Visible(focused bool) Visibility {
	return Visibility{Visible: true, Focused: focused}
}

// Workspace is a virtual desktop normalized across backends. ID is the
// protocol-session token for generic-protocol workspaces, or the
// compositor-assigned numeric id for IPC backends; Name carries the
// user-facing label either way.
type Workspace struct {
	ID         int64
	Index      int
	Name       string
	Monitor    string
	Visibility Visibility
	Windows    int
}

// ClipboardKind classifies a clipboard payload.
type ClipboardKind int

const (
	ClipboardText ClipboardKind = iota
	ClipboardImage
	ClipboardOther
)

func (k ClipboardKind) String() string {
	switch k {
	case ClipboardText:
		return "text"
	case ClipboardImage:
		return "image"
	default:
		return "other"
	}
}

// ClipboardItem is one clipboard selection. Equality between items is by
// ID only; Same reports payload-level equality used for de-duplication.
type ClipboardItem struct {
	ID   uint64
	Mime string
	Kind ClipboardKind
	Text string
	Data []byte
}

// Same reports whether two items carry an identical (mime, value) pair,
// regardless of their ids.
func (c ClipboardItem) Same(other ClipboardItem) bool {
	if c.Mime != other.Mime || c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ClipboardText:
		return c.Text == other.Text
	default:
		if len(c.Data) != len(other.Data) {
			return false
		}
		for i := range c.Data {
			if c.Data[i] != other.Data[i] {
				return false
			}
		}
		return true
	}
}
