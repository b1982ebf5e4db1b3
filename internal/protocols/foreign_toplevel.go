// Package protocols implements the Wayland extension protocols the panel
// core binds: foreign-toplevel management, workspace management,
// data-control, linux-dmabuf and toplevel export. Each protocol object is a
// wlturbo proxy with handler callbacks and an opcode-switch Dispatch.
package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	ForeignToplevelManagerInterface = "zwlr_foreign_toplevel_manager_v1"
	ForeignToplevelHandleInterface  = "zwlr_foreign_toplevel_handle_v1"
)

// ForeignToplevelManagerVersion is the highest protocol version we speak.
const ForeignToplevelManagerVersion = 3

// Toplevel state values carried in the handle's state array.
const (
	ToplevelStateMaximized  = 0
	ToplevelStateMinimized  = 1
	ToplevelStateActivated  = 2
	ToplevelStateFullscreen = 3
)

// ForeignToplevelManager tracks all toplevel windows the compositor exposes
type ForeignToplevelManager struct {
	wl.BaseProxy
	toplevelHandler func(*ForeignToplevelHandle)
	finishedHandler func()
}

// NewForeignToplevelManager creates a new foreign toplevel manager
func NewForeignToplevelManager(ctx *wl.Context) *ForeignToplevelManager {
	manager := &ForeignToplevelManager{}
	manager.SetContext(ctx)
	return manager
}

// SetToplevelHandler sets the handler for new toplevel events
func (m *ForeignToplevelManager) SetToplevelHandler(handler func(*ForeignToplevelHandle)) {
	m.toplevelHandler = handler
}

// SetFinishedHandler sets the handler for the finished event
func (m *ForeignToplevelManager) SetFinishedHandler(handler func()) {
	m.finishedHandler = handler
}

// Stop asks the compositor to stop sending toplevel events
func (m *ForeignToplevelManager) Stop() error {
	// Opcode 0: stop
	const opcode = 0
	return m.Context().SendRequest(m, opcode)
}

// Dispatch handles incoming events
func (m *ForeignToplevelManager) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // toplevel
		id := event.Uint32()
		handle := NewForeignToplevelHandle(m.Context())
		handle.SetID(id)
		m.Context().Register(handle)
		if m.toplevelHandler != nil {
			m.toplevelHandler(handle)
		}
	case 1: // finished
		if m.finishedHandler != nil {
			m.finishedHandler()
		}
		m.Context().Unregister(m)
	}
}

// ForeignToplevelHandle represents one toplevel window
type ForeignToplevelHandle struct {
	wl.BaseProxy
	titleHandler       func(string)
	appIDHandler       func(string)
	outputEnterHandler func(uint32)
	outputLeaveHandler func(uint32)
	stateHandler       func([]byte)
	doneHandler        func()
	closedHandler      func()
	parentHandler      func(uint32)
}

// NewForeignToplevelHandle creates a new toplevel handle
func NewForeignToplevelHandle(ctx *wl.Context) *ForeignToplevelHandle {
	handle := &ForeignToplevelHandle{}
	handle.SetContext(ctx)
	return handle
}

// SetTitleHandler sets the handler for title events
func (h *ForeignToplevelHandle) SetTitleHandler(handler func(string)) {
	h.titleHandler = handler
}

// SetAppIDHandler sets the handler for app_id events
func (h *ForeignToplevelHandle) SetAppIDHandler(handler func(string)) {
	h.appIDHandler = handler
}

// SetOutputEnterHandler sets the handler for output_enter events. The
// argument is the wl_output object id.
func (h *ForeignToplevelHandle) SetOutputEnterHandler(handler func(uint32)) {
	h.outputEnterHandler = handler
}

// SetOutputLeaveHandler sets the handler for output_leave events
func (h *ForeignToplevelHandle) SetOutputLeaveHandler(handler func(uint32)) {
	h.outputLeaveHandler = handler
}

// SetStateHandler sets the handler for state events. The raw byte array is
// passed through; decode it with ParseStateArray.
func (h *ForeignToplevelHandle) SetStateHandler(handler func([]byte)) {
	h.stateHandler = handler
}

// SetDoneHandler sets the handler for done events
func (h *ForeignToplevelHandle) SetDoneHandler(handler func()) {
	h.doneHandler = handler
}

// SetClosedHandler sets the handler for closed events
func (h *ForeignToplevelHandle) SetClosedHandler(handler func()) {
	h.closedHandler = handler
}

// SetParentHandler sets the handler for parent events (version 3)
func (h *ForeignToplevelHandle) SetParentHandler(handler func(uint32)) {
	h.parentHandler = handler
}

// Activate requests the compositor to focus this toplevel on the given seat
func (h *ForeignToplevelHandle) Activate(seat *Seat) error {
	// Opcode 4: activate
	const opcode = 4
	return h.Context().SendRequest(h, opcode, seat)
}

// Close requests the toplevel to close itself
func (h *ForeignToplevelHandle) Close() error {
	// Opcode 5: close
	const opcode = 5
	return h.Context().SendRequest(h, opcode)
}

// Destroy destroys the client-side handle
func (h *ForeignToplevelHandle) Destroy() error {
	// Opcode 7: destroy
	const opcode = 7
	err := h.Context().SendRequest(h, opcode)
	h.Context().Unregister(h)
	return err
}

// SetFullscreen requests fullscreen on the given output (null for any)
func (h *ForeignToplevelHandle) SetFullscreen(output *Output) error {
	// Opcode 8: set_fullscreen
	const opcode = 8
	if output == nil {
		return h.Context().SendRequest(h, opcode, nil)
	}
	return h.Context().SendRequest(h, opcode, output)
}

// Dispatch handles incoming events
func (h *ForeignToplevelHandle) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // title
		if h.titleHandler != nil {
			h.titleHandler(event.String())
		}
	case 1: // app_id
		if h.appIDHandler != nil {
			h.appIDHandler(event.String())
		}
	case 2: // output_enter
		if h.outputEnterHandler != nil {
			h.outputEnterHandler(event.Uint32())
		}
	case 3: // output_leave
		if h.outputLeaveHandler != nil {
			h.outputLeaveHandler(event.Uint32())
		}
	case 4: // state
		if h.stateHandler != nil {
			h.stateHandler(event.Array())
		}
	case 5: // done
		if h.doneHandler != nil {
			h.doneHandler()
		}
	case 6: // closed
		if h.closedHandler != nil {
			h.closedHandler()
		}
	case 7: // parent
		if h.parentHandler != nil {
			h.parentHandler(event.Uint32())
		}
	}
}
