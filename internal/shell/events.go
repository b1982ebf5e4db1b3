package shell

// OutputEventKind distinguishes output lifecycle transitions.
type OutputEventKind int

const (
	OutputAdded OutputEventKind = iota
	OutputUpdated
	OutputRemoved
)

// OutputEvent is published whenever an output appears, changes, or is
// unplugged.
type OutputEvent struct {
	Kind   OutputEventKind
	Output Output
}

// ToplevelEventKind distinguishes toplevel lifecycle transitions.
type ToplevelEventKind int

const (
	ToplevelAdded ToplevelEventKind = iota
	ToplevelUpdated
	ToplevelRemoved
)

// ToplevelEvent is published on every committed toplevel snapshot. For
// ToplevelRemoved only the ID field of Toplevel is meaningful.
type ToplevelEvent struct {
	Kind     ToplevelEventKind
	Toplevel Toplevel
}

// WorkspaceUpdateKind enumerates the normalized workspace transitions every
// backend maps into.
type WorkspaceUpdateKind int

const (
	// WorkspaceInit carries the full workspace list, sent once on
	// subscription and again whenever a backend can only report wholesale
	// changes.
	WorkspaceInit WorkspaceUpdateKind = iota
	WorkspaceAdd
	WorkspaceRemove
	WorkspaceMove
	WorkspaceFocus
	WorkspaceRename
	WorkspaceUrgent
	WorkspaceWindows
	WorkspaceUnknown
)

func (k WorkspaceUpdateKind) String() string {
	switch k {
	case WorkspaceInit:
		return "init"
	case WorkspaceAdd:
		return "add"
	case WorkspaceRemove:
		return "remove"
	case WorkspaceMove:
		return "move"
	case WorkspaceFocus:
		return "focus"
	case WorkspaceRename:
		return "rename"
	case WorkspaceUrgent:
		return "urgent"
	case WorkspaceWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// WorkspaceUpdate is one normalized workspace transition. Which fields are
// populated depends on Kind: Init fills All; Add/Move/Rename/Urgent/Windows
// fill Workspace; Remove fills Workspace.ID (and Name when known); Focus
// fills Old and New with workspace names.
type WorkspaceUpdate struct {
	Kind      WorkspaceUpdateKind
	All       []Workspace
	Workspace Workspace
	Old       string
	New       string
}

// ClipboardEventKind distinguishes clipboard cache transitions.
type ClipboardEventKind int

const (
	// ClipboardAdd announces a new cache entry.
	ClipboardAdd ClipboardEventKind = iota
	// ClipboardActivate re-announces an existing entry whose content was
	// selected again.
	ClipboardActivate
	// ClipboardRemove announces an entry leaving the cache.
	ClipboardRemove
	// ClipboardClear signals that the selection changed but no content is
	// delivered, e.g. when this process published the selection itself.
	ClipboardClear
)

// ClipboardEvent is published on clipboard cache transitions. Item is zero
// for ClipboardClear.
type ClipboardEvent struct {
	Kind ClipboardEventKind
	Item ClipboardItem
}
