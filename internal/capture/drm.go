package capture

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DRM ioctl request numbers.
const (
	drmIoctlModeCreateDumb  = 0xC02064B2
	drmIoctlModeDestroyDumb = 0xC00464B4
	drmIoctlPrimeHandleToFD = 0xC00C642D
)

// ModifierLinear is the universal linear (untiled) buffer layout.
const ModifierLinear uint64 = 0

type drmModeCreateDumb struct {
	Height uint32
	Width  uint32
	Bpp    uint32
	Flags  uint32
	Handle uint32
	Pitch  uint32
	Size   uint64
}

type drmModeDestroyDumb struct {
	Handle uint32
}

type drmPrimeHandle struct {
	Handle uint32
	Flags  uint32
	FD     int32
}

// Allocator creates dumb buffers on a DRM device and exports them as
// dmabuf file descriptors. Dumb buffers are always linear, which is why
// capture only negotiates the linear modifier.
type Allocator struct {
	node string
	fd   int
}

// OpenAllocator opens the DRM device node for buffer allocation.
func OpenAllocator(node string) (*Allocator, error) {
	fd, err := unix.Open(node, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening DRM device %s: %w", node, err)
	}
	return &Allocator{node: node, fd: fd}, nil
}

// Node returns the device path this allocator uses.
func (a *Allocator) Node() string {
	return a.node
}

// Close releases the device fd.
func (a *Allocator) Close() error {
	return unix.Close(a.fd)
}

func (a *Allocator) ioctl(req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(a.fd), req, uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errno == unix.EINTR || errno == unix.EAGAIN {
			continue
		}
		return errno
	}
}

// Allocate creates a 32bpp dumb buffer of the given size and exports its
// single plane as a dmabuf fd.
func (a *Allocator) Allocate(width, height, format uint32) (*Buffer, error) {
	create := drmModeCreateDumb{
		Height: height,
		Width:  width,
		Bpp:    32,
	}
	if err := a.ioctl(drmIoctlModeCreateDumb, unsafe.Pointer(&create)); err != nil {
		return nil, fmt.Errorf("creating dumb buffer %dx%d: %w", width, height, err)
	}

	prime := drmPrimeHandle{
		Handle: create.Handle,
		Flags:  unix.O_CLOEXEC | unix.O_RDWR,
	}
	if err := a.ioctl(drmIoctlPrimeHandleToFD, unsafe.Pointer(&prime)); err != nil {
		a.destroyHandle(create.Handle)
		return nil, fmt.Errorf("exporting dumb buffer: %w", err)
	}

	return &Buffer{
		Width:    width,
		Height:   height,
		Format:   format,
		Modifier: ModifierLinear,
		Planes: []Plane{{
			FD:     int(prime.FD),
			Offset: 0,
			Stride: create.Pitch,
		}},
		handle: create.Handle,
		alloc:  a,
	}, nil
}

func (a *Allocator) destroyHandle(handle uint32) {
	destroy := drmModeDestroyDumb{Handle: handle}
	_ = a.ioctl(drmIoctlModeDestroyDumb, unsafe.Pointer(&destroy))
}
