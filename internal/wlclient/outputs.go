package wlclient

import (
	"github.com/bnema/wlturbo/wl"

	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

type outputState struct {
	registryName uint32
	proxy        *protocols.Output
	pending      shell.Output
	current      shell.Output
	committed    bool
}

// outputTracker follows wl_output globals. Outputs are referenced, not
// owned, by toplevels and workspace groups through their protocol object
// id.
type outputTracker struct {
	byProxy    map[uint32]*outputState
	byRegistry map[uint32]*outputState
	publish    func(shell.OutputEvent)
}

func newOutputTracker(publish func(shell.OutputEvent)) *outputTracker {
	return &outputTracker{
		byProxy:    make(map[uint32]*outputState),
		byRegistry: make(map[uint32]*outputState),
		publish:    publish,
	}
}

// name resolves a wl_output object id to its connector name. Returns ""
// for unknown or not-yet-committed outputs.
func (t *outputTracker) name(objectID uint32) string {
	if o, ok := t.byProxy[objectID]; ok {
		return o.current.Name
	}
	return ""
}

// all returns committed snapshots of every known output.
func (t *outputTracker) all() []shell.Output {
	result := make([]shell.Output, 0, len(t.byProxy))
	for _, o := range t.byProxy {
		if o.committed {
			result = append(result, o.current)
		}
	}
	return result
}

// remove drops an output whose registry global disappeared.
func (t *outputTracker) remove(registryName uint32) {
	o, ok := t.byRegistry[registryName]
	if !ok {
		return
	}
	delete(t.byRegistry, registryName)
	if o.proxy != nil {
		delete(t.byProxy, o.proxy.ID())
		if err := o.proxy.Release(); err != nil {
			logger.Debug("releasing output", "output", o.current.Name, "err", err)
		}
	}
	t.publish(shell.OutputEvent{Kind: shell.OutputRemoved, Output: o.current})
}

// reconcile releases outputs whose registry global disappeared. The
// registry records global_remove only in its table, so the dispatch loop
// diffs against it after each batch.
func (t *outputTracker) reconcile(announced map[uint32]wl.Global) {
	for name := range t.byRegistry {
		if _, ok := announced[name]; !ok {
			t.remove(name)
		}
	}
}

// wire connects a freshly bound wl_output proxy.
func (t *outputTracker) wire(registryName uint32, proxy *protocols.Output) {
	o := &outputState{registryName: registryName, proxy: proxy}
	t.byRegistry[registryName] = o
	t.byProxy[proxy.ID()] = o

	proxy.SetGeometryHandler(func(x, y int32) {
		o.pending.X = x
		o.pending.Y = y
	})
	proxy.SetModeHandler(func(flags uint32, width, height, refresh int32) {
		// mode flag bit 0 marks the current mode
		if flags&1 != 0 {
			o.pending.Width = width
			o.pending.Height = height
		}
	})
	proxy.SetNameHandler(func(name string) { o.pending.Name = name })
	proxy.SetDescriptionHandler(func(desc string) { o.pending.Description = desc })
	proxy.SetDoneHandler(func() {
		o.current = o.pending
		kind := shell.OutputUpdated
		if !o.committed {
			o.committed = true
			kind = shell.OutputAdded
		}
		t.publish(shell.OutputEvent{Kind: kind, Output: o.current})
	})
}
