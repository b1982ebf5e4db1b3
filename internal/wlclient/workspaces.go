package wlclient

import (
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

// workspaceData is one snapshot of a workspace's fields, double-buffered
// like toplevelData.
type workspaceData struct {
	token  string
	name   string
	coords []uint32
	flags  shell.WorkspaceFlags
}

type workspaceHandle struct {
	id        int64
	proxy     *protocols.WorkspaceHandle
	group     *workspaceGroup
	pending   workspaceData
	current   workspaceData
	committed bool
}

type workspaceGroup struct {
	proxy  *protocols.WorkspaceGroup
	output uint32
}

// workspaceTracker is the generic-protocol workspace state machine. All
// methods run on the event-loop goroutine.
type workspaceTracker struct {
	nextID  int64
	byID    map[int64]*workspaceHandle
	byProxy map[uint32]*workspaceHandle
	groups  map[uint32]*workspaceGroup

	// activation is per group; a focus transition only retires the
	// previously active workspace of the same group
	focused map[*workspaceGroup]string

	outputName func(objectID uint32) string
	publish    func(shell.WorkspaceUpdate)
}

func newWorkspaceTracker(outputName func(uint32) string, publish func(shell.WorkspaceUpdate)) *workspaceTracker {
	return &workspaceTracker{
		byID:       make(map[int64]*workspaceHandle),
		byProxy:    make(map[uint32]*workspaceHandle),
		groups:     make(map[uint32]*workspaceGroup),
		focused:    make(map[*workspaceGroup]string),
		outputName: outputName,
		publish:    publish,
	}
}

func (t *workspaceTracker) trackGroup(proxy *protocols.WorkspaceGroup) *workspaceGroup {
	g := &workspaceGroup{proxy: proxy}
	if proxy != nil {
		t.groups[proxy.ID()] = g
	}
	return g
}

func (t *workspaceTracker) track(proxy *protocols.WorkspaceHandle) *workspaceHandle {
	t.nextID++
	h := &workspaceHandle{id: t.nextID, proxy: proxy}
	t.byID[h.id] = h
	if proxy != nil {
		t.byProxy[proxy.ID()] = h
	}
	return h
}

func (t *workspaceTracker) live(h *workspaceHandle) bool {
	_, ok := t.byID[h.id]
	return ok
}

func (t *workspaceTracker) setToken(h *workspaceHandle, token string) {
	if t.live(h) {
		h.pending.token = token
	}
}

func (t *workspaceTracker) setName(h *workspaceHandle, name string) {
	if t.live(h) {
		h.pending.name = name
	}
}

// setCoordinates decodes the packed u32 coordinate tuple. Malformed arrays
// are logged and dropped.
func (t *workspaceTracker) setCoordinates(h *workspaceHandle, data []byte) {
	if !t.live(h) {
		return
	}
	coords, err := protocols.ParseStateArray(data)
	if err != nil {
		logger.Warn("dropping malformed workspace coordinates", "workspace", h.id, "err", err)
		return
	}
	h.pending.coords = coords
}

// setState decodes the packed state array into the normalized flag set.
func (t *workspaceTracker) setState(h *workspaceHandle, data []byte) {
	if !t.live(h) {
		return
	}
	values, err := protocols.ParseStateArray(data)
	if err != nil {
		logger.Warn("dropping malformed workspace state event", "workspace", h.id, "err", err)
		return
	}
	var flags shell.WorkspaceFlags
	for _, v := range values {
		switch v {
		case protocols.WorkspaceStateActive:
			flags |= shell.WorkspaceFlagActive
		case protocols.WorkspaceStateUrgent:
			flags |= shell.WorkspaceFlagUrgent
		case protocols.WorkspaceStateHidden:
			flags |= shell.WorkspaceFlagHidden
		default:
			logger.Debug("unknown workspace state value", "workspace", h.id, "value", v)
		}
	}
	h.pending.flags = flags
}

func (t *workspaceTracker) enterGroup(h *workspaceHandle, g *workspaceGroup) {
	if t.live(h) {
		h.group = g
	}
}

func (t *workspaceTracker) leaveGroup(h *workspaceHandle, g *workspaceGroup) {
	if t.live(h) && h.group == g {
		h.group = nil
	}
}

// commitAll applies every pending record; the manager's done event covers
// all workspaces at once.
func (t *workspaceTracker) commitAll() {
	for _, h := range t.byID {
		t.commit(h)
	}
}

func (t *workspaceTracker) commit(h *workspaceHandle) {
	if !t.live(h) {
		return
	}
	prev := h.current
	wasCommitted := h.committed
	h.current = h.pending
	h.current.coords = append([]uint32(nil), h.pending.coords...)
	h.committed = true

	ws := t.snapshot(h)
	if !wasCommitted {
		t.publish(shell.WorkspaceUpdate{Kind: shell.WorkspaceAdd, Workspace: ws})
	} else if prev.name != h.current.name {
		t.publish(shell.WorkspaceUpdate{Kind: shell.WorkspaceRename, Workspace: ws})
	}

	wasActive := prev.flags.Has(shell.WorkspaceFlagActive)
	isActive := h.current.flags.Has(shell.WorkspaceFlagActive)
	if isActive && !wasActive {
		old := t.focused[h.group]
		t.focused[h.group] = ws.Name
		t.publish(shell.WorkspaceUpdate{Kind: shell.WorkspaceFocus, Workspace: ws, Old: old, New: ws.Name})
	}
	if h.current.flags.Has(shell.WorkspaceFlagUrgent) && !prev.flags.Has(shell.WorkspaceFlagUrgent) {
		t.publish(shell.WorkspaceUpdate{Kind: shell.WorkspaceUrgent, Workspace: ws})
	}
}

// removed retires the workspace immediately and emits a removal keyed by
// id.
func (t *workspaceTracker) removed(h *workspaceHandle) {
	if !t.live(h) {
		return
	}
	delete(t.byID, h.id)
	if h.proxy != nil {
		delete(t.byProxy, h.proxy.ID())
		if err := h.proxy.Destroy(); err != nil {
			logger.Debug("destroying workspace handle", "workspace", h.id, "err", err)
		}
	}
	t.publish(shell.WorkspaceUpdate{
		Kind:      shell.WorkspaceRemove,
		Workspace: shell.Workspace{ID: h.id, Name: h.current.name},
	})
}

func (t *workspaceTracker) snapshot(h *workspaceHandle) shell.Workspace {
	monitor := ""
	if h.group != nil && h.group.output != 0 && t.outputName != nil {
		monitor = t.outputName(h.group.output)
	}
	index := 0
	if len(h.current.coords) > 0 {
		index = int(h.current.coords[0])
	}
	return shell.Workspace{
		ID:         h.id,
		Index:      index,
		Name:       h.current.name,
		Monitor:    monitor,
		Visibility: h.current.flags.ToVisibility(),
	}
}

// all returns committed snapshots of every live workspace.
func (t *workspaceTracker) all() []shell.Workspace {
	result := make([]shell.Workspace, 0, len(t.byID))
	for _, h := range t.byID {
		if h.committed {
			result = append(result, t.snapshot(h))
		}
	}
	return result
}

func (t *workspaceTracker) byName(name string) (*workspaceHandle, bool) {
	for _, h := range t.byID {
		if h.current.name == name {
			return h, true
		}
	}
	return nil, false
}

// wireGroup connects a new group proxy to the tracker.
func (t *workspaceTracker) wireGroup(proxy *protocols.WorkspaceGroup) {
	g := t.trackGroup(proxy)
	proxy.SetOutputEnterHandler(func(id uint32) { g.output = id })
	proxy.SetOutputLeaveHandler(func(id uint32) {
		if g.output == id {
			g.output = 0
		}
	})
	proxy.SetWorkspaceEnterHandler(func(id uint32) {
		if h, ok := t.byProxy[id]; ok {
			t.enterGroup(h, g)
		}
	})
	proxy.SetWorkspaceLeaveHandler(func(id uint32) {
		if h, ok := t.byProxy[id]; ok {
			t.leaveGroup(h, g)
		}
	})
	proxy.SetRemovedHandler(func() {
		delete(t.groups, proxy.ID())
		delete(t.focused, g)
		for _, h := range t.byID {
			if h.group == g {
				h.group = nil
			}
		}
	})
}

// wire connects a new workspace proxy to the tracker.
func (t *workspaceTracker) wire(proxy *protocols.WorkspaceHandle) {
	h := t.track(proxy)
	proxy.SetIDHandler(func(token string) { t.setToken(h, token) })
	proxy.SetNameHandler(func(name string) { t.setName(h, name) })
	proxy.SetCoordinatesHandler(func(data []byte) { t.setCoordinates(h, data) })
	proxy.SetStateHandler(func(data []byte) { t.setState(h, data) })
	proxy.SetRemovedHandler(func() { t.removed(h) })
}
