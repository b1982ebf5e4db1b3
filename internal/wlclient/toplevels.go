package wlclient

import (
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

// toplevelData is one snapshot of a toplevel's descriptive fields. The
// tracker keeps two copies per handle: pending accumulates in-flight event
// data, current is the last committed snapshot consumers observe.
type toplevelData struct {
	title      string
	appID      string
	fullscreen bool
	activated  bool
	output     uint32
}

type toplevelHandle struct {
	id        uint64
	proxy     *protocols.ForeignToplevelHandle
	pending   toplevelData
	current   toplevelData
	committed bool
}

// toplevelTracker is the toplevel state machine. All methods run on the
// event-loop goroutine.
type toplevelTracker struct {
	nextID     uint64
	byID       map[uint64]*toplevelHandle
	outputName func(objectID uint32) string
	publish    func(shell.ToplevelEvent)
}

func newToplevelTracker(outputName func(uint32) string, publish func(shell.ToplevelEvent)) *toplevelTracker {
	return &toplevelTracker{
		byID:       make(map[uint64]*toplevelHandle),
		outputName: outputName,
		publish:    publish,
	}
}

// track assigns the next process-unique id to a new handle.
func (t *toplevelTracker) track(proxy *protocols.ForeignToplevelHandle) *toplevelHandle {
	t.nextID++
	h := &toplevelHandle{id: t.nextID, proxy: proxy}
	t.byID[h.id] = h
	return h
}

func (t *toplevelTracker) live(h *toplevelHandle) bool {
	_, ok := t.byID[h.id]
	return ok
}

func (t *toplevelTracker) setTitle(h *toplevelHandle, title string) {
	if !t.live(h) {
		return
	}
	h.pending.title = title
}

func (t *toplevelTracker) setAppID(h *toplevelHandle, appID string) {
	if !t.live(h) {
		return
	}
	h.pending.appID = appID
}

func (t *toplevelTracker) setOutput(h *toplevelHandle, objectID uint32) {
	if !t.live(h) {
		return
	}
	h.pending.output = objectID
}

func (t *toplevelTracker) clearOutput(h *toplevelHandle, objectID uint32) {
	if !t.live(h) || h.pending.output != objectID {
		return
	}
	h.pending.output = 0
}

// setState decodes the packed state array into discrete flags. A malformed
// array is logged and dropped; the pending record is left unchanged.
func (t *toplevelTracker) setState(h *toplevelHandle, data []byte) {
	if !t.live(h) {
		return
	}
	values, err := protocols.ParseStateArray(data)
	if err != nil {
		logger.Warn("dropping malformed toplevel state event", "toplevel", h.id, "err", err)
		return
	}
	h.pending.fullscreen = false
	h.pending.activated = false
	for _, v := range values {
		switch v {
		case protocols.ToplevelStateFullscreen:
			h.pending.fullscreen = true
		case protocols.ToplevelStateActivated:
			h.pending.activated = true
		case protocols.ToplevelStateMaximized, protocols.ToplevelStateMinimized:
			// tracked states we do not surface
		default:
			logger.Debug("unknown toplevel state value", "toplevel", h.id, "value", v)
		}
	}
}

// commit atomically replaces the current snapshot with the pending record.
// The first commit announces the toplevel; later commits announce updates.
func (t *toplevelTracker) commit(h *toplevelHandle) {
	if !t.live(h) {
		return
	}
	h.current = h.pending
	kind := shell.ToplevelUpdated
	if !h.committed {
		h.committed = true
		kind = shell.ToplevelAdded
	}
	t.publish(shell.ToplevelEvent{Kind: kind, Toplevel: t.snapshot(h)})
}

// closed retires the handle immediately, bypassing pending/current, and
// removes it from the index so later events for it are ignored.
func (t *toplevelTracker) closed(h *toplevelHandle) {
	if !t.live(h) {
		return
	}
	delete(t.byID, h.id)
	if h.proxy != nil {
		if err := h.proxy.Destroy(); err != nil {
			logger.Debug("destroying toplevel handle", "toplevel", h.id, "err", err)
		}
	}
	t.publish(shell.ToplevelEvent{
		Kind:     shell.ToplevelRemoved,
		Toplevel: shell.Toplevel{ID: h.id},
	})
}

func (t *toplevelTracker) snapshot(h *toplevelHandle) shell.Toplevel {
	out := ""
	if h.current.output != 0 && t.outputName != nil {
		out = t.outputName(h.current.output)
	}
	return shell.Toplevel{
		ID:         h.id,
		Title:      h.current.title,
		AppID:      h.current.appID,
		Fullscreen: h.current.fullscreen,
		Focused:    h.current.activated,
		Output:     out,
	}
}

// all returns committed snapshots of every live toplevel.
func (t *toplevelTracker) all() []shell.Toplevel {
	result := make([]shell.Toplevel, 0, len(t.byID))
	for _, h := range t.byID {
		if h.committed {
			result = append(result, t.snapshot(h))
		}
	}
	return result
}

func (t *toplevelTracker) get(id uint64) (*toplevelHandle, bool) {
	h, ok := t.byID[id]
	return h, ok
}

// wire connects a new protocol handle to the tracker. Runs on the
// event-loop goroutine during manager dispatch.
func (t *toplevelTracker) wire(proxy *protocols.ForeignToplevelHandle) {
	h := t.track(proxy)
	proxy.SetTitleHandler(func(title string) { t.setTitle(h, title) })
	proxy.SetAppIDHandler(func(appID string) { t.setAppID(h, appID) })
	proxy.SetOutputEnterHandler(func(id uint32) { t.setOutput(h, id) })
	proxy.SetOutputLeaveHandler(func(id uint32) { t.clearOutput(h, id) })
	proxy.SetStateHandler(func(data []byte) { t.setState(h, data) })
	proxy.SetDoneHandler(func() { t.commit(h) })
	proxy.SetClosedHandler(func() { t.closed(h) })
}
