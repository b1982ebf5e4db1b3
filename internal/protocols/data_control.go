package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	DataControlManagerInterface = "zwlr_data_control_manager_v1"
	DataControlDeviceInterface  = "zwlr_data_control_device_v1"
	DataControlSourceInterface  = "zwlr_data_control_source_v1"
	DataControlOfferInterface   = "zwlr_data_control_offer_v1"
)

// DataControlManagerVersion is the highest protocol version we speak.
const DataControlManagerVersion = 2

// DataControlManager creates clipboard devices and sources
type DataControlManager struct {
	wl.BaseProxy
}

// NewDataControlManager creates a new data control manager
func NewDataControlManager(ctx *wl.Context) *DataControlManager {
	manager := &DataControlManager{}
	manager.SetContext(ctx)
	return manager
}

// CreateDataSource creates a new data source for an outbound copy
func (m *DataControlManager) CreateDataSource() (*DataControlSource, error) {
	source := NewDataControlSource(m.Context())
	source.SetID(m.Context().AllocateID())
	m.Context().Register(source)

	// Opcode 0: create_data_source
	const opcode = 0
	if err := m.Context().SendRequest(m, opcode, source); err != nil {
		m.Context().Unregister(source)
		return nil, err
	}
	return source, nil
}

// GetDataDevice creates the clipboard device for a seat
func (m *DataControlManager) GetDataDevice(seat *Seat) (*DataControlDevice, error) {
	device := NewDataControlDevice(m.Context())
	device.SetID(m.Context().AllocateID())
	m.Context().Register(device)

	// Opcode 1: get_data_device
	const opcode = 1
	if err := m.Context().SendRequest(m, opcode, device, seat); err != nil {
		m.Context().Unregister(device)
		return nil, err
	}
	return device, nil
}

// Destroy destroys the manager
func (m *DataControlManager) Destroy() error {
	// Opcode 2: destroy
	const opcode = 2
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has none)
func (m *DataControlManager) Dispatch(event *wl.Event) {}

// DataControlDevice delivers selection events for one seat
type DataControlDevice struct {
	wl.BaseProxy
	offerHandler            func(*DataControlOffer)
	selectionHandler        func(uint32)
	primarySelectionHandler func(uint32)
	finishedHandler         func()
}

// NewDataControlDevice creates a new data control device
func NewDataControlDevice(ctx *wl.Context) *DataControlDevice {
	device := &DataControlDevice{}
	device.SetContext(ctx)
	return device
}

// SetOfferHandler sets the handler for data_offer events
func (d *DataControlDevice) SetOfferHandler(handler func(*DataControlOffer)) {
	d.offerHandler = handler
}

// SetSelectionHandler sets the handler for selection events. The argument
// is the offer object id, 0 when the selection is cleared.
func (d *DataControlDevice) SetSelectionHandler(handler func(uint32)) {
	d.selectionHandler = handler
}

// SetPrimarySelectionHandler sets the handler for primary_selection events
func (d *DataControlDevice) SetPrimarySelectionHandler(handler func(uint32)) {
	d.primarySelectionHandler = handler
}

// SetFinishedHandler sets the handler for finished events
func (d *DataControlDevice) SetFinishedHandler(handler func()) {
	d.finishedHandler = handler
}

// SetSelection makes the given source the current clipboard selection.
// Pass nil to clear the selection.
func (d *DataControlDevice) SetSelection(source *DataControlSource) error {
	// Opcode 0: set_selection
	const opcode = 0
	if source == nil {
		return d.Context().SendRequest(d, opcode, nil)
	}
	return d.Context().SendRequest(d, opcode, source)
}

// Destroy destroys the device
func (d *DataControlDevice) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := d.Context().SendRequest(d, opcode)
	d.Context().Unregister(d)
	return err
}

// Dispatch handles incoming events
func (d *DataControlDevice) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // data_offer
		id := event.Uint32()
		offer := NewDataControlOffer(d.Context())
		offer.SetID(id)
		d.Context().Register(offer)
		if d.offerHandler != nil {
			d.offerHandler(offer)
		}
	case 1: // selection
		if d.selectionHandler != nil {
			d.selectionHandler(event.Uint32())
		}
	case 2: // finished
		if d.finishedHandler != nil {
			d.finishedHandler()
		}
		d.Context().Unregister(d)
	case 3: // primary_selection
		if d.primarySelectionHandler != nil {
			d.primarySelectionHandler(event.Uint32())
		}
	}
}

// DataControlSource is an outbound clipboard payload we offer to the
// compositor
type DataControlSource struct {
	wl.BaseProxy
	sendHandler      func(mime string, fd uintptr)
	cancelledHandler func()
}

// NewDataControlSource creates a new data control source
func NewDataControlSource(ctx *wl.Context) *DataControlSource {
	source := &DataControlSource{}
	source.SetContext(ctx)
	return source
}

// SetSendHandler sets the handler for send events. The handler owns the
// file descriptor and must close it.
func (s *DataControlSource) SetSendHandler(handler func(mime string, fd uintptr)) {
	s.sendHandler = handler
}

// SetCancelledHandler sets the handler for cancelled events
func (s *DataControlSource) SetCancelledHandler(handler func()) {
	s.cancelledHandler = handler
}

// Offer advertises a mime type this source can provide
func (s *DataControlSource) Offer(mime string) error {
	// Opcode 0: offer
	const opcode = 0
	return s.Context().SendRequest(s, opcode, mime)
}

// Destroy destroys the source
func (s *DataControlSource) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := s.Context().SendRequest(s, opcode)
	s.Context().Unregister(s)
	return err
}

// Dispatch handles incoming events
func (s *DataControlSource) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // send
		mime := event.String()
		fd := event.Fd()
		if s.sendHandler != nil {
			s.sendHandler(mime, fd)
		}
	case 1: // cancelled
		if s.cancelledHandler != nil {
			s.cancelledHandler()
		}
		s.Context().Unregister(s)
	}
}

// DataControlOffer is an inbound clipboard selection advertised by another
// client
type DataControlOffer struct {
	wl.BaseProxy
	mimeHandler func(string)
}

// NewDataControlOffer creates a new data control offer
func NewDataControlOffer(ctx *wl.Context) *DataControlOffer {
	offer := &DataControlOffer{}
	offer.SetContext(ctx)
	return offer
}

// SetMimeHandler sets the handler for offer events announcing a mime type
func (o *DataControlOffer) SetMimeHandler(handler func(string)) {
	o.mimeHandler = handler
}

// Receive asks for the offer's content in the given mime type. The
// compositor writes the payload to the write end we pass and the caller
// reads from its own read end.
func (o *DataControlOffer) Receive(mime string, fd int) error {
	// Opcode 0: receive
	const opcode = 0
	return o.Context().SendRequestWithFDs(o, opcode, []int{fd}, mime)
}

// Destroy destroys the offer
func (o *DataControlOffer) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := o.Context().SendRequest(o, opcode)
	o.Context().Unregister(o)
	return err
}

// Dispatch handles incoming events
func (o *DataControlOffer) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // offer
		if o.mimeHandler != nil {
			o.mimeHandler(event.String())
		}
	}
}
