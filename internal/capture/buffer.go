package capture

import (
	"golang.org/x/sys/unix"

	"github.com/panelkit/panelkit/internal/protocols"
)

// Plane is one memory plane of a GPU buffer.
type Plane struct {
	FD     int
	Offset uint32
	Stride uint32
}

// Buffer is an allocated GPU buffer plus its protocol import handle. The
// cache is the sole long-term owner; capture requests borrow it.
type Buffer struct {
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Planes   []Plane

	// Wl is the imported wl_buffer, set once protocol import succeeds.
	Wl *protocols.Buffer

	handle uint32
	alloc  *Allocator
}

// Matches reports whether the buffer can serve a request of the given
// shape without reallocation.
func (b *Buffer) Matches(width, height, format uint32) bool {
	return b.Width == width && b.Height == height && b.Format == format
}

// Close releases the plane fds, the protocol buffer and the DRM handle.
func (b *Buffer) Close() error {
	var first error
	if b.Wl != nil {
		if err := b.Wl.Destroy(); err != nil && first == nil {
			first = err
		}
		b.Wl = nil
	}
	for _, p := range b.Planes {
		if p.FD >= 0 {
			if err := unix.Close(p.FD); err != nil && first == nil {
				first = err
			}
		}
	}
	b.Planes = nil
	if b.alloc != nil && b.handle != 0 {
		b.alloc.destroyHandle(b.handle)
		b.handle = 0
	}
	return first
}
