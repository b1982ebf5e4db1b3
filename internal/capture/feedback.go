// Package capture implements the GPU-buffer frame capture subsystem:
// dmabuf feedback parsing, DRM buffer allocation and the per-toplevel
// buffer cache.
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

var (
	// ErrUnsupportedFormat is returned when a requested pixel format does
	// not advertise the linear modifier.
	ErrUnsupportedFormat = errors.New("pixel format not supported for capture")

	// ErrYInverted is returned when the compositor delivers a vertically
	// flipped frame, which we refuse to present uncorrected.
	ErrYInverted = errors.New("y-inverted frame not supported")

	// ErrNoFeedback is returned when capture is requested before the
	// dmabuf feedback negotiation completed.
	ErrNoFeedback = errors.New("dmabuf feedback not yet received")
)

// formatTableEntry is one row of the compositor's format table: 16 bytes,
// format + padding + modifier.
const formatTableEntrySize = 16

// Feedback is the negotiated dmabuf capability set, built once from the
// compositor's feedback events.
type Feedback struct {
	// Formats maps a DRM fourcc format to its supported modifiers.
	Formats map[uint32][]uint64
	// DeviceNode is the path of the primary GPU device, resolved from the
	// main_device dev_t.
	DeviceNode string
}

// Supports reports whether the format advertises the given modifier.
func (f *Feedback) Supports(format uint32, modifier uint64) bool {
	for _, m := range f.Formats[format] {
		if m == modifier {
			return true
		}
	}
	return false
}

// FeedbackBuilder accumulates the raw feedback event payloads until the
// done event seals them into a Feedback.
type FeedbackBuilder struct {
	table      []byte
	mainDevice uint64
	haveDevice bool
	formats    map[uint32][]uint64
}

// NewFeedbackBuilder creates an empty builder.
func NewFeedbackBuilder() *FeedbackBuilder {
	return &FeedbackBuilder{formats: make(map[uint32][]uint64)}
}

// SetFormatTable maps and copies the format table the compositor shares by
// file descriptor. The fd is closed before returning.
func (b *FeedbackBuilder) SetFormatTable(fd int, size uint32) error {
	defer unix.Close(fd)
	if size == 0 || size%formatTableEntrySize != 0 {
		return fmt.Errorf("format table size %d is not a multiple of %d", size, formatTableEntrySize)
	}
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("mapping format table: %w", err)
	}
	defer func() { _ = unix.Munmap(data) }()
	b.table = append([]byte(nil), data...)
	return nil
}

// SetMainDevice records the primary GPU's dev_t from the main_device
// event payload.
func (b *FeedbackBuilder) SetMainDevice(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("main device payload is %d bytes, want 8", len(data))
	}
	b.mainDevice = binary.NativeEndian.Uint64(data)
	b.haveDevice = true
	return nil
}

// AddTrancheFormats merges one tranche's format table indices into the
// format→modifier map. Indices are 16-bit little-endian.
func (b *FeedbackBuilder) AddTrancheFormats(data []byte) error {
	if len(data)%2 != 0 {
		return fmt.Errorf("tranche formats length %d is not a multiple of 2", len(data))
	}
	if b.table == nil {
		return errors.New("tranche formats received before format table")
	}
	entries := len(b.table) / formatTableEntrySize
	for i := 0; i < len(data); i += 2 {
		idx := int(binary.LittleEndian.Uint16(data[i : i+2]))
		if idx >= entries {
			return fmt.Errorf("format table index %d out of range (%d entries)", idx, entries)
		}
		off := idx * formatTableEntrySize
		format := binary.LittleEndian.Uint32(b.table[off : off+4])
		modifier := binary.LittleEndian.Uint64(b.table[off+8 : off+16])
		if !containsModifier(b.formats[format], modifier) {
			b.formats[format] = append(b.formats[format], modifier)
		}
	}
	return nil
}

// Done seals the builder into a Feedback, resolving the main device dev_t
// to its /dev/dri node.
func (b *FeedbackBuilder) Done() (*Feedback, error) {
	if !b.haveDevice {
		return nil, errors.New("feedback done without main device")
	}
	node, err := findDeviceNode(b.mainDevice)
	if err != nil {
		return nil, err
	}
	return &Feedback{Formats: b.formats, DeviceNode: node}, nil
}

func containsModifier(mods []uint64, m uint64) bool {
	for _, v := range mods {
		if v == m {
			return true
		}
	}
	return false
}

// findDeviceNode scans /dev/dri for the device whose rdev matches the
// compositor's main device.
func findDeviceNode(dev uint64) (string, error) {
	entries, err := os.ReadDir("/dev/dri")
	if err != nil {
		return "", fmt.Errorf("reading /dev/dri: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join("/dev/dri", entry.Name())
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			continue
		}
		if st.Rdev == dev {
			return path, nil
		}
	}
	return "", fmt.Errorf("no /dev/dri node matches device %#x", dev)
}
