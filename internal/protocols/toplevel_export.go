package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	ToplevelExportManagerInterface = "hyprland_toplevel_export_manager_v1"
	ToplevelExportFrameInterface   = "hyprland_toplevel_export_frame_v1"
)

// ToplevelExportManagerVersion is the highest protocol version we speak.
const ToplevelExportManagerVersion = 2

// ExportFrameFlagYInvert marks a frame whose contents are vertically
// flipped.
const ExportFrameFlagYInvert = 1

// ToplevelExportManager captures toplevel window contents into buffers
type ToplevelExportManager struct {
	wl.BaseProxy
}

// NewToplevelExportManager creates a new toplevel export manager
func NewToplevelExportManager(ctx *wl.Context) *ToplevelExportManager {
	manager := &ToplevelExportManager{}
	manager.SetContext(ctx)
	return manager
}

// CaptureToplevel starts a capture of the toplevel identified by the
// foreign-toplevel handle
func (m *ToplevelExportManager) CaptureToplevel(handle *ForeignToplevelHandle, overlayCursor bool) (*ToplevelExportFrame, error) {
	frame := NewToplevelExportFrame(m.Context())
	frame.SetID(m.Context().AllocateID())
	m.Context().Register(frame)

	cursor := int32(0)
	if overlayCursor {
		cursor = 1
	}

	// Opcode 2: capture_toplevel_with_wlr_toplevel_handle
	const opcode = 2
	if err := m.Context().SendRequest(m, opcode, frame, cursor, handle); err != nil {
		m.Context().Unregister(frame)
		return nil, err
	}
	return frame, nil
}

// Destroy destroys the manager
func (m *ToplevelExportManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has none)
func (m *ToplevelExportManager) Dispatch(event *wl.Event) {}

// ToplevelExportFrame is one in-flight capture of a toplevel
type ToplevelExportFrame struct {
	wl.BaseProxy
	shmBufferHandler   func(format, width, height, stride uint32)
	flagsHandler       func(uint32)
	readyHandler       func()
	failedHandler      func()
	linuxDmabufHandler func(format, width, height uint32)
	bufferDoneHandler  func()
}

// NewToplevelExportFrame creates a new export frame
func NewToplevelExportFrame(ctx *wl.Context) *ToplevelExportFrame {
	frame := &ToplevelExportFrame{}
	frame.SetContext(ctx)
	return frame
}

// SetShmBufferHandler sets the handler for shared-memory buffer offers
func (f *ToplevelExportFrame) SetShmBufferHandler(handler func(format, width, height, stride uint32)) {
	f.shmBufferHandler = handler
}

// SetFlagsHandler sets the handler for flags events
func (f *ToplevelExportFrame) SetFlagsHandler(handler func(uint32)) {
	f.flagsHandler = handler
}

// SetReadyHandler sets the handler for ready events
func (f *ToplevelExportFrame) SetReadyHandler(handler func()) {
	f.readyHandler = handler
}

// SetFailedHandler sets the handler for failed events
func (f *ToplevelExportFrame) SetFailedHandler(handler func()) {
	f.failedHandler = handler
}

// SetLinuxDmabufHandler sets the handler for linux_dmabuf buffer offers
func (f *ToplevelExportFrame) SetLinuxDmabufHandler(handler func(format, width, height uint32)) {
	f.linuxDmabufHandler = handler
}

// SetBufferDoneHandler sets the handler for buffer_done events
func (f *ToplevelExportFrame) SetBufferDoneHandler(handler func()) {
	f.bufferDoneHandler = handler
}

// Copy asks the compositor to copy the frame into the given buffer
func (f *ToplevelExportFrame) Copy(buffer *Buffer, ignoreDamage bool) error {
	// Opcode 0: copy
	const opcode = 0
	damage := int32(0)
	if ignoreDamage {
		damage = 1
	}
	return f.Context().SendRequest(f, opcode, buffer, damage)
}

// Destroy destroys the frame
func (f *ToplevelExportFrame) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := f.Context().SendRequest(f, opcode)
	f.Context().Unregister(f)
	return err
}

// Dispatch handles incoming events. Damage events (opcode 1) carry regions
// for shared-memory copies we never issue; they are ignored.
func (f *ToplevelExportFrame) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // buffer (shm)
		if f.shmBufferHandler != nil {
			format := event.Uint32()
			width := event.Uint32()
			height := event.Uint32()
			stride := event.Uint32()
			f.shmBufferHandler(format, width, height, stride)
		}
	case 2: // flags
		if f.flagsHandler != nil {
			f.flagsHandler(event.Uint32())
		}
	case 3: // ready
		if f.readyHandler != nil {
			f.readyHandler()
		}
	case 4: // failed
		if f.failedHandler != nil {
			f.failedHandler()
		}
	case 5: // linux_dmabuf
		if f.linuxDmabufHandler != nil {
			format := event.Uint32()
			width := event.Uint32()
			height := event.Uint32()
			f.linuxDmabufHandler(format, width, height)
		}
	case 6: // buffer_done
		if f.bufferDoneHandler != nil {
			f.bufferDoneHandler()
		}
	}
}
