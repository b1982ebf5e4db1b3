package wlclient

import "errors"

var (
	// ErrUnsupported is returned when a request needs an optional protocol
	// the compositor does not advertise.
	ErrUnsupported = errors.New("protocol not supported by compositor")

	// ErrNotFound is returned when a request references an id that is not
	// in the live state.
	ErrNotFound = errors.New("object not found")

	// ErrClosed is returned when the client connection has shut down.
	ErrClosed = errors.New("client closed")
)
