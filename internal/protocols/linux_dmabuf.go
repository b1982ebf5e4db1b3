package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	LinuxDmabufInterface         = "zwp_linux_dmabuf_v1"
	LinuxBufferParamsInterface   = "zwp_linux_buffer_params_v1"
	LinuxDmabufFeedbackInterface = "zwp_linux_dmabuf_feedback_v1"
	BufferInterface              = "wl_buffer"
)

// LinuxDmabufVersion is the highest protocol version we speak. Feedback
// objects require version 4.
const LinuxDmabufVersion = 4

// LinuxDmabuf negotiates GPU buffer import with the compositor
type LinuxDmabuf struct {
	wl.BaseProxy
}

// NewLinuxDmabuf creates a new dmabuf manager
func NewLinuxDmabuf(ctx *wl.Context) *LinuxDmabuf {
	dmabuf := &LinuxDmabuf{}
	dmabuf.SetContext(ctx)
	return dmabuf
}

// Destroy destroys the manager
func (d *LinuxDmabuf) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := d.Context().SendRequest(d, opcode)
	d.Context().Unregister(d)
	return err
}

// CreateParams creates a buffer params object for assembling a dmabuf
// buffer from planes
func (d *LinuxDmabuf) CreateParams() (*LinuxBufferParams, error) {
	params := NewLinuxBufferParams(d.Context())
	params.SetID(d.Context().AllocateID())
	d.Context().Register(params)

	// Opcode 1: create_params
	const opcode = 1
	if err := d.Context().SendRequest(d, opcode, params); err != nil {
		d.Context().Unregister(params)
		return nil, err
	}
	return params, nil
}

// GetDefaultFeedback creates a feedback object for the default (no surface)
// format/modifier negotiation
func (d *LinuxDmabuf) GetDefaultFeedback() (*LinuxDmabufFeedback, error) {
	feedback := NewLinuxDmabufFeedback(d.Context())
	feedback.SetID(d.Context().AllocateID())
	d.Context().Register(feedback)

	// Opcode 2: get_default_feedback
	const opcode = 2
	if err := d.Context().SendRequest(d, opcode, feedback); err != nil {
		d.Context().Unregister(feedback)
		return nil, err
	}
	return feedback, nil
}

// Dispatch handles incoming events. The pre-v4 format/modifier events are
// superseded by feedback and ignored.
func (d *LinuxDmabuf) Dispatch(event *wl.Event) {}

// LinuxBufferParams accumulates dmabuf planes into a wl_buffer
type LinuxBufferParams struct {
	wl.BaseProxy
	createdHandler func(uint32)
	failedHandler  func()
}

// NewLinuxBufferParams creates a new buffer params object
func NewLinuxBufferParams(ctx *wl.Context) *LinuxBufferParams {
	params := &LinuxBufferParams{}
	params.SetContext(ctx)
	return params
}

// SetCreatedHandler sets the handler for created events
func (p *LinuxBufferParams) SetCreatedHandler(handler func(bufferID uint32)) {
	p.createdHandler = handler
}

// SetFailedHandler sets the handler for failed events
func (p *LinuxBufferParams) SetFailedHandler(handler func()) {
	p.failedHandler = handler
}

// Destroy destroys the params object
func (p *LinuxBufferParams) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := p.Context().SendRequest(p, opcode)
	p.Context().Unregister(p)
	return err
}

// Add registers one memory plane. The file descriptor is passed out of
// band; the modifier is split into high and low halves on the wire.
func (p *LinuxBufferParams) Add(fd int, planeIdx, offset, stride uint32, modifier uint64) error {
	// Opcode 1: add
	const opcode = 1
	modHi := uint32(modifier >> 32)
	modLo := uint32(modifier & 0xffffffff)
	return p.Context().SendRequestWithFDs(p, opcode, []int{fd}, planeIdx, offset, stride, modHi, modLo)
}

// CreateImmed creates the wl_buffer immediately with a client-allocated id,
// skipping the created/failed round trip
func (p *LinuxBufferParams) CreateImmed(width, height int32, format, flags uint32) (*Buffer, error) {
	buffer := NewBuffer(p.Context())
	buffer.SetID(p.Context().AllocateID())
	p.Context().Register(buffer)

	// Opcode 3: create_immed
	const opcode = 3
	if err := p.Context().SendRequest(p, opcode, buffer, width, height, format, flags); err != nil {
		p.Context().Unregister(buffer)
		return nil, err
	}
	return buffer, nil
}

// Dispatch handles incoming events
func (p *LinuxBufferParams) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // created
		if p.createdHandler != nil {
			p.createdHandler(event.Uint32())
		}
	case 1: // failed
		if p.failedHandler != nil {
			p.failedHandler()
		}
	}
}

// LinuxDmabufFeedback delivers the compositor's format/modifier table and
// preferred device
type LinuxDmabufFeedback struct {
	wl.BaseProxy
	doneHandler           func()
	formatTableHandler    func(fd uintptr, size uint32)
	mainDeviceHandler     func([]byte)
	trancheDoneHandler    func()
	trancheDeviceHandler  func([]byte)
	trancheFormatsHandler func([]byte)
	trancheFlagsHandler   func(uint32)
}

// NewLinuxDmabufFeedback creates a new feedback object
func NewLinuxDmabufFeedback(ctx *wl.Context) *LinuxDmabufFeedback {
	feedback := &LinuxDmabufFeedback{}
	feedback.SetContext(ctx)
	return feedback
}

// SetDoneHandler sets the handler for done events
func (f *LinuxDmabufFeedback) SetDoneHandler(handler func()) {
	f.doneHandler = handler
}

// SetFormatTableHandler sets the handler for format_table events. The fd
// references read-only memory holding 16-byte format+modifier entries; the
// handler owns the fd.
func (f *LinuxDmabufFeedback) SetFormatTableHandler(handler func(fd uintptr, size uint32)) {
	f.formatTableHandler = handler
}

// SetMainDeviceHandler sets the handler for main_device events. The array
// holds a native-endian dev_t.
func (f *LinuxDmabufFeedback) SetMainDeviceHandler(handler func([]byte)) {
	f.mainDeviceHandler = handler
}

// SetTrancheDoneHandler sets the handler for tranche_done events
func (f *LinuxDmabufFeedback) SetTrancheDoneHandler(handler func()) {
	f.trancheDoneHandler = handler
}

// SetTrancheTargetDeviceHandler sets the handler for tranche_target_device
// events
func (f *LinuxDmabufFeedback) SetTrancheTargetDeviceHandler(handler func([]byte)) {
	f.trancheDeviceHandler = handler
}

// SetTrancheFormatsHandler sets the handler for tranche_formats events.
// The array holds 16-bit indices into the format table.
func (f *LinuxDmabufFeedback) SetTrancheFormatsHandler(handler func([]byte)) {
	f.trancheFormatsHandler = handler
}

// SetTrancheFlagsHandler sets the handler for tranche_flags events
func (f *LinuxDmabufFeedback) SetTrancheFlagsHandler(handler func(uint32)) {
	f.trancheFlagsHandler = handler
}

// Destroy destroys the feedback object
func (f *LinuxDmabufFeedback) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := f.Context().SendRequest(f, opcode)
	f.Context().Unregister(f)
	return err
}

// Dispatch handles incoming events
func (f *LinuxDmabufFeedback) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // done
		if f.doneHandler != nil {
			f.doneHandler()
		}
	case 1: // format_table
		fd := event.Fd()
		size := event.Uint32()
		if f.formatTableHandler != nil {
			f.formatTableHandler(fd, size)
		}
	case 2: // main_device
		if f.mainDeviceHandler != nil {
			f.mainDeviceHandler(event.Array())
		}
	case 3: // tranche_done
		if f.trancheDoneHandler != nil {
			f.trancheDoneHandler()
		}
	case 4: // tranche_target_device
		if f.trancheDeviceHandler != nil {
			f.trancheDeviceHandler(event.Array())
		}
	case 5: // tranche_formats
		if f.trancheFormatsHandler != nil {
			f.trancheFormatsHandler(event.Array())
		}
	case 6: // tranche_flags
		if f.trancheFlagsHandler != nil {
			f.trancheFlagsHandler(event.Uint32())
		}
	}
}

// Buffer is a wl_buffer created from dmabuf planes
type Buffer struct {
	wl.BaseProxy
	releaseHandler func()
}

// NewBuffer creates a new buffer proxy
func NewBuffer(ctx *wl.Context) *Buffer {
	buffer := &Buffer{}
	buffer.SetContext(ctx)
	return buffer
}

// SetReleaseHandler sets the handler for release events
func (b *Buffer) SetReleaseHandler(handler func()) {
	b.releaseHandler = handler
}

// Destroy destroys the buffer
func (b *Buffer) Destroy() error {
	// Opcode 0: destroy
	const opcode = 0
	err := b.Context().SendRequest(b, opcode)
	b.Context().Unregister(b)
	return err
}

// Dispatch handles incoming events
func (b *Buffer) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // release
		if b.releaseHandler != nil {
			b.releaseHandler()
		}
	}
}
