package protocols

import (
	"github.com/bnema/wlturbo/wl"
)

// Core interface names
const (
	OutputInterface = "wl_output"
	SeatInterface   = "wl_seat"
)

// Highest core protocol versions we speak.
const (
	OutputVersion = 4
	SeatVersion   = 5
)

// Seat capability bits
const (
	SeatCapabilityPointer  = 1
	SeatCapabilityKeyboard = 2
	SeatCapabilityTouch    = 4
)

// Output is a wl_output proxy
type Output struct {
	wl.BaseProxy
	geometryHandler    func(x, y int32)
	modeHandler        func(flags uint32, width, height, refresh int32)
	doneHandler        func()
	scaleHandler       func(int32)
	nameHandler        func(string)
	descriptionHandler func(string)
}

// NewOutput creates a new output proxy
func NewOutput(ctx *wl.Context) *Output {
	output := &Output{}
	output.SetContext(ctx)
	return output
}

// SetGeometryHandler sets the handler for geometry events. Only the logical
// position is surfaced; physical size, subpixel layout and transform are
// not needed here.
func (o *Output) SetGeometryHandler(handler func(x, y int32)) {
	o.geometryHandler = handler
}

// SetModeHandler sets the handler for mode events
func (o *Output) SetModeHandler(handler func(flags uint32, width, height, refresh int32)) {
	o.modeHandler = handler
}

// SetDoneHandler sets the handler for done events
func (o *Output) SetDoneHandler(handler func()) {
	o.doneHandler = handler
}

// SetScaleHandler sets the handler for scale events
func (o *Output) SetScaleHandler(handler func(int32)) {
	o.scaleHandler = handler
}

// SetNameHandler sets the handler for name events (version 4)
func (o *Output) SetNameHandler(handler func(string)) {
	o.nameHandler = handler
}

// SetDescriptionHandler sets the handler for description events (version 4)
func (o *Output) SetDescriptionHandler(handler func(string)) {
	o.descriptionHandler = handler
}

// Release releases the output proxy
func (o *Output) Release() error {
	// Opcode 0: release
	const opcode = 0
	err := o.Context().SendRequest(o, opcode)
	o.Context().Unregister(o)
	return err
}

// Dispatch handles incoming events
func (o *Output) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // geometry
		x := event.Int32()
		y := event.Int32()
		if o.geometryHandler != nil {
			o.geometryHandler(x, y)
		}
	case 1: // mode
		flags := event.Uint32()
		width := event.Int32()
		height := event.Int32()
		refresh := event.Int32()
		if o.modeHandler != nil {
			o.modeHandler(flags, width, height, refresh)
		}
	case 2: // done
		if o.doneHandler != nil {
			o.doneHandler()
		}
	case 3: // scale
		if o.scaleHandler != nil {
			o.scaleHandler(event.Int32())
		}
	case 4: // name
		if o.nameHandler != nil {
			o.nameHandler(event.String())
		}
	case 5: // description
		if o.descriptionHandler != nil {
			o.descriptionHandler(event.String())
		}
	}
}

// Seat is a wl_seat proxy
type Seat struct {
	wl.BaseProxy
	capabilitiesHandler func(uint32)
	nameHandler         func(string)
}

// NewSeat creates a new seat proxy
func NewSeat(ctx *wl.Context) *Seat {
	seat := &Seat{}
	seat.SetContext(ctx)
	return seat
}

// SetCapabilitiesHandler sets the handler for capabilities events
func (s *Seat) SetCapabilitiesHandler(handler func(uint32)) {
	s.capabilitiesHandler = handler
}

// SetNameHandler sets the handler for name events
func (s *Seat) SetNameHandler(handler func(string)) {
	s.nameHandler = handler
}

// Release releases the seat proxy
func (s *Seat) Release() error {
	// Opcode 3: release
	const opcode = 3
	err := s.Context().SendRequest(s, opcode)
	s.Context().Unregister(s)
	return err
}

// Dispatch handles incoming events
func (s *Seat) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // capabilities
		if s.capabilitiesHandler != nil {
			s.capabilitiesHandler(event.Uint32())
		}
	case 1: // name
		if s.nameHandler != nil {
			s.nameHandler(event.String())
		}
	}
}
