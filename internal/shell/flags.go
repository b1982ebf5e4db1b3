package shell

// WorkspaceFlags is the normalized workspace state bit-set shared by the
// generic protocol and the IPC backends.
type WorkspaceFlags uint32

const (
	WorkspaceFlagActive WorkspaceFlags = 1 << iota
	WorkspaceFlagFocused
	WorkspaceFlagUrgent
	WorkspaceFlagHidden
)

// Has reports whether all bits in flag are set.
func (f WorkspaceFlags) Has(flag WorkspaceFlags) bool {
	return f&flag == flag
}

// ToVisibility decodes the bit-set into a Visibility value. A workspace is
// visible when active, focused only when both active and focused bits are
// set; an explicit hidden bit or the absence of active yields Hidden.
func (f WorkspaceFlags) ToVisibility() Visibility {
	if f.Has(WorkspaceFlagHidden) || !f.Has(WorkspaceFlagActive) {
		return Hidden()
	}
	return Visible(f.Has(WorkspaceFlagFocused))
}

// FlagsFromVisibility encodes a Visibility back into the bit-set.
func FlagsFromVisibility(v Visibility) WorkspaceFlags {
	if !v.Visible {
		return 0
	}
	flags := WorkspaceFlagActive
	if v.Focused {
		flags |= WorkspaceFlagFocused
	}
	return flags
}
