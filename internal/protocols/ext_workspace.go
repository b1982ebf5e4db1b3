package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	WorkspaceManagerInterface = "ext_workspace_manager_v1"
	WorkspaceGroupInterface   = "ext_workspace_group_handle_v1"
	WorkspaceHandleInterface  = "ext_workspace_handle_v1"
)

// WorkspaceManagerVersion is the highest protocol version we speak.
const WorkspaceManagerVersion = 1

// Workspace state values carried in the handle's state array.
const (
	WorkspaceStateActive = 0
	WorkspaceStateUrgent = 1
	WorkspaceStateHidden = 2
)

// WorkspaceManager tracks workspace groups and workspaces
type WorkspaceManager struct {
	wl.BaseProxy
	groupHandler     func(*WorkspaceGroup)
	workspaceHandler func(*WorkspaceHandle)
	doneHandler      func()
	finishedHandler  func()
}

// NewWorkspaceManager creates a new workspace manager
func NewWorkspaceManager(ctx *wl.Context) *WorkspaceManager {
	manager := &WorkspaceManager{}
	manager.SetContext(ctx)
	return manager
}

// SetGroupHandler sets the handler for new workspace group events
func (m *WorkspaceManager) SetGroupHandler(handler func(*WorkspaceGroup)) {
	m.groupHandler = handler
}

// SetWorkspaceHandler sets the handler for new workspace events
func (m *WorkspaceManager) SetWorkspaceHandler(handler func(*WorkspaceHandle)) {
	m.workspaceHandler = handler
}

// SetDoneHandler sets the handler for done events
func (m *WorkspaceManager) SetDoneHandler(handler func()) {
	m.doneHandler = handler
}

// SetFinishedHandler sets the handler for finished events
func (m *WorkspaceManager) SetFinishedHandler(handler func()) {
	m.finishedHandler = handler
}

// Commit atomically applies all pending activate/deactivate requests
func (m *WorkspaceManager) Commit() error {
	// Opcode 0: commit
	const opcode = 0
	return m.Context().SendRequest(m, opcode)
}

// Stop asks the compositor to stop sending workspace events
func (m *WorkspaceManager) Stop() error {
	// Opcode 1: stop
	const opcode = 1
	return m.Context().SendRequest(m, opcode)
}

// Dispatch handles incoming events
func (m *WorkspaceManager) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // workspace_group
		id := event.Uint32()
		group := NewWorkspaceGroup(m.Context())
		group.SetID(id)
		m.Context().Register(group)
		if m.groupHandler != nil {
			m.groupHandler(group)
		}
	case 1: // workspace
		id := event.Uint32()
		workspace := NewWorkspaceHandle(m.Context())
		workspace.SetID(id)
		m.Context().Register(workspace)
		if m.workspaceHandler != nil {
			m.workspaceHandler(workspace)
		}
	case 2: // done
		if m.doneHandler != nil {
			m.doneHandler()
		}
	case 3: // finished
		if m.finishedHandler != nil {
			m.finishedHandler()
		}
		m.Context().Unregister(m)
	}
}

// WorkspaceGroup represents a set of workspaces, usually one per output
type WorkspaceGroup struct {
	wl.BaseProxy
	capabilitiesHandler   func([]byte)
	outputEnterHandler    func(uint32)
	outputLeaveHandler    func(uint32)
	workspaceEnterHandler func(uint32)
	workspaceLeaveHandler func(uint32)
	removedHandler        func()
}

// NewWorkspaceGroup creates a new workspace group handle
func NewWorkspaceGroup(ctx *wl.Context) *WorkspaceGroup {
	group := &WorkspaceGroup{}
	group.SetContext(ctx)
	return group
}

// SetCapabilitiesHandler sets the handler for capabilities events
func (g *WorkspaceGroup) SetCapabilitiesHandler(handler func([]byte)) {
	g.capabilitiesHandler = handler
}

// SetOutputEnterHandler sets the handler for output_enter events
func (g *WorkspaceGroup) SetOutputEnterHandler(handler func(uint32)) {
	g.outputEnterHandler = handler
}

// SetOutputLeaveHandler sets the handler for output_leave events
func (g *WorkspaceGroup) SetOutputLeaveHandler(handler func(uint32)) {
	g.outputLeaveHandler = handler
}

// SetWorkspaceEnterHandler sets the handler for workspace_enter events
func (g *WorkspaceGroup) SetWorkspaceEnterHandler(handler func(uint32)) {
	g.workspaceEnterHandler = handler
}

// SetWorkspaceLeaveHandler sets the handler for workspace_leave events
func (g *WorkspaceGroup) SetWorkspaceLeaveHandler(handler func(uint32)) {
	g.workspaceLeaveHandler = handler
}

// SetRemovedHandler sets the handler for removed events
func (g *WorkspaceGroup) SetRemovedHandler(handler func()) {
	g.removedHandler = handler
}

// CreateWorkspace asks the compositor to create a workspace with the given
// name in this group. Compositors that lack the capability ignore it.
func (g *WorkspaceGroup) CreateWorkspace(name string) error {
	// Opcode 0: create_workspace
	const opcode = 0
	return g.Context().SendRequest(g, opcode, name)
}

// Destroy destroys the client-side group handle
func (g *WorkspaceGroup) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := g.Context().SendRequest(g, opcode)
	g.Context().Unregister(g)
	return err
}

// Dispatch handles incoming events
func (g *WorkspaceGroup) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // capabilities
		if g.capabilitiesHandler != nil {
			g.capabilitiesHandler(event.Array())
		}
	case 1: // output_enter
		if g.outputEnterHandler != nil {
			g.outputEnterHandler(event.Uint32())
		}
	case 2: // output_leave
		if g.outputLeaveHandler != nil {
			g.outputLeaveHandler(event.Uint32())
		}
	case 3: // workspace_enter
		if g.workspaceEnterHandler != nil {
			g.workspaceEnterHandler(event.Uint32())
		}
	case 4: // workspace_leave
		if g.workspaceLeaveHandler != nil {
			g.workspaceLeaveHandler(event.Uint32())
		}
	case 5: // removed
		if g.removedHandler != nil {
			g.removedHandler()
		}
	}
}

// WorkspaceHandle represents one workspace
type WorkspaceHandle struct {
	wl.BaseProxy
	idHandler           func(string)
	nameHandler         func(string)
	coordinatesHandler  func([]byte)
	stateHandler        func([]byte)
	capabilitiesHandler func([]byte)
	removedHandler      func()
}

// NewWorkspaceHandle creates a new workspace handle
func NewWorkspaceHandle(ctx *wl.Context) *WorkspaceHandle {
	workspace := &WorkspaceHandle{}
	workspace.SetContext(ctx)
	return workspace
}

// SetIDHandler sets the handler for id events. The id is an opaque token
// scoped to the protocol session.
func (w *WorkspaceHandle) SetIDHandler(handler func(string)) {
	w.idHandler = handler
}

// SetNameHandler sets the handler for name events
func (w *WorkspaceHandle) SetNameHandler(handler func(string)) {
	w.nameHandler = handler
}

// SetCoordinatesHandler sets the handler for coordinates events. The raw
// byte array packs unsigned 32-bit little-endian values; decode it with
// ParseStateArray.
func (w *WorkspaceHandle) SetCoordinatesHandler(handler func([]byte)) {
	w.coordinatesHandler = handler
}

// SetStateHandler sets the handler for state events
func (w *WorkspaceHandle) SetStateHandler(handler func([]byte)) {
	w.stateHandler = handler
}

// SetCapabilitiesHandler sets the handler for capabilities events
func (w *WorkspaceHandle) SetCapabilitiesHandler(handler func([]byte)) {
	w.capabilitiesHandler = handler
}

// SetRemovedHandler sets the handler for removed events
func (w *WorkspaceHandle) SetRemovedHandler(handler func()) {
	w.removedHandler = handler
}

// Destroy destroys the client-side workspace handle
func (w *WorkspaceHandle) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := w.Context().SendRequest(w, opcode)
	w.Context().Unregister(w)
	return err
}

// Activate schedules this workspace for activation; the request takes
// effect on the next manager commit.
func (w *WorkspaceHandle) Activate() error {
	// Opcode 1: activate
	const opcode = 1
	return w.Context().SendRequest(w, opcode)
}

// Deactivate schedules this workspace for deactivation
func (w *WorkspaceHandle) Deactivate() error {
	// Opcode 2: deactivate
	const opcode = 2
	return w.Context().SendRequest(w, opcode)
}

// Dispatch handles incoming events
func (w *WorkspaceHandle) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // id
		if w.idHandler != nil {
			w.idHandler(event.String())
		}
	case 1: // name
		if w.nameHandler != nil {
			w.nameHandler(event.String())
		}
	case 2: // coordinates
		if w.coordinatesHandler != nil {
			w.coordinatesHandler(event.Array())
		}
	case 3: // state
		if w.stateHandler != nil {
			w.stateHandler(event.Array())
		}
	case 4: // capabilities
		if w.capabilitiesHandler != nil {
			w.capabilitiesHandler(event.Array())
		}
	case 5: // removed
		if w.removedHandler != nil {
			w.removedHandler()
		}
	}
}
