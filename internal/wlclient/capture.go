package wlclient

import (
	"errors"
	"fmt"

	"github.com/panelkit/panelkit/internal/capture"
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
)

// ErrCaptureFailed is returned when the compositor reports a failed copy.
var ErrCaptureFailed = errors.New("compositor reported capture failure")

// captureState holds the frame-capture side of the client: negotiated
// feedback, the DRM allocator, the per-toplevel buffer cache and the
// first-frame tracking used to pick the copy flag. Only the cache is
// touched off the loop goroutine.
type captureState struct {
	builder   *capture.FeedbackBuilder
	feedback  *capture.Feedback
	allocator *capture.Allocator
	cache     *capture.Cache
	captured  map[uint64]bool

	// DeviceNode overrides the feedback-resolved DRM node when set.
	deviceNode string
}

func newCaptureState() *captureState {
	return &captureState{
		builder:  capture.NewFeedbackBuilder(),
		cache:    capture.NewCache(),
		captured: make(map[uint64]bool),
	}
}

// SetDeviceNode overrides the DRM device used for buffer allocation. Must
// be called before Connect.
func (c *Client) SetDeviceNode(node string) {
	c.captures.deviceNode = node
}

// startDmabufFeedback wires the feedback object; its done event seals the
// format table and opens the allocator.
func (c *Client) startDmabufFeedback() error {
	feedback, err := c.dmabuf.GetDefaultFeedback()
	if err != nil {
		return fmt.Errorf("requesting dmabuf feedback: %w", err)
	}

	cs := c.captures
	feedback.SetFormatTableHandler(func(fd uintptr, size uint32) {
		if err := cs.builder.SetFormatTable(int(fd), size); err != nil {
			logger.Error("parsing dmabuf format table", "err", err)
		}
	})
	feedback.SetMainDeviceHandler(func(data []byte) {
		if err := cs.builder.SetMainDevice(data); err != nil {
			logger.Error("parsing dmabuf main device", "err", err)
		}
	})
	feedback.SetTrancheFormatsHandler(func(data []byte) {
		if err := cs.builder.AddTrancheFormats(data); err != nil {
			logger.Error("parsing dmabuf tranche formats", "err", err)
		}
	})
	feedback.SetDoneHandler(func() {
		if cs.feedback != nil {
			// feedback can be re-sent on GPU topology changes; keep the
			// established allocator
			return
		}
		fb, err := cs.builder.Done()
		if err != nil {
			logger.Error("sealing dmabuf feedback", "err", err)
			return
		}
		node := fb.DeviceNode
		if cs.deviceNode != "" {
			node = cs.deviceNode
		}
		alloc, err := capture.OpenAllocator(node)
		if err != nil {
			logger.Error("opening DRM device", "node", node, "err", err)
			return
		}
		cs.feedback = fb
		cs.allocator = alloc
		logger.Info("dmabuf feedback ready", "device", node, "formats", len(fb.Formats))
	})
	return nil
}

// startCapture runs on the loop goroutine. The result channel receives
// exactly one value once the copy resolves; it must be buffered.
func (c *Client) startCapture(id uint64, result chan<- error) {
	cs := c.captures
	if c.exportManager == nil || c.toplevelManager == nil {
		result <- ErrUnsupported
		return
	}
	if cs.feedback == nil || cs.allocator == nil {
		result <- capture.ErrNoFeedback
		return
	}
	handle, ok := c.toplevels.get(id)
	if !ok || handle.proxy == nil {
		result <- ErrNotFound
		return
	}

	frame, err := c.exportManager.CaptureToplevel(handle.proxy, false)
	if err != nil {
		result <- fmt.Errorf("creating capture frame: %w", err)
		return
	}

	var (
		format, width, height uint32
		haveDmabuf            bool
		yInverted             bool
	)

	fail := func(err error) {
		if derr := frame.Destroy(); derr != nil {
			logger.Debug("destroying capture frame", "toplevel", id, "err", derr)
		}
		cs.cache.Drop(id)
		result <- err
	}

	frame.SetLinuxDmabufHandler(func(f, w, h uint32) {
		format, width, height = f, w, h
		haveDmabuf = true
	})
	frame.SetFlagsHandler(func(flags uint32) {
		if flags&protocols.ExportFrameFlagYInvert != 0 {
			yInverted = true
		}
	})
	frame.SetBufferDoneHandler(func() {
		// Shared-memory offers without a dmabuf offer are not supported.
		if !haveDmabuf {
			fail(ErrUnsupported)
			return
		}
		buf, ok := cs.cache.Get(id, width, height, format)
		if !ok {
			buf, err = c.allocateBuffer(width, height, format)
			if err != nil {
				fail(err)
				return
			}
			cs.cache.Put(id, buf)
		}
		first := !cs.captured[id]
		if err := frame.Copy(buf.Wl, first); err != nil {
			fail(fmt.Errorf("requesting frame copy: %w", err))
		}
	})
	frame.SetReadyHandler(func() {
		if yInverted {
			fail(capture.ErrYInverted)
			return
		}
		cs.captured[id] = true
		if err := frame.Destroy(); err != nil {
			logger.Debug("destroying finished frame", "toplevel", id, "err", err)
		}
		result <- nil
	})
	frame.SetFailedHandler(func() {
		fail(ErrCaptureFailed)
	})
}

// allocateBuffer creates a linear GPU buffer and imports it as a
// wl_buffer.
func (c *Client) allocateBuffer(width, height, format uint32) (*capture.Buffer, error) {
	cs := c.captures
	if !cs.feedback.Supports(format, capture.ModifierLinear) {
		return nil, fmt.Errorf("format %#x: %w", format, capture.ErrUnsupportedFormat)
	}

	buf, err := cs.allocator.Allocate(width, height, format)
	if err != nil {
		return nil, err
	}

	params, err := c.dmabuf.CreateParams()
	if err != nil {
		_ = buf.Close()
		return nil, fmt.Errorf("creating buffer params: %w", err)
	}
	for i, plane := range buf.Planes {
		if err := params.Add(plane.FD, uint32(i), plane.Offset, plane.Stride, buf.Modifier); err != nil {
			_ = params.Destroy()
			_ = buf.Close()
			return nil, fmt.Errorf("adding buffer plane %d: %w", i, err)
		}
	}
	wlBuf, err := params.CreateImmed(int32(width), int32(height), format, 0)
	if err != nil {
		_ = params.Destroy()
		_ = buf.Close()
		return nil, fmt.Errorf("importing buffer: %w", err)
	}
	if err := params.Destroy(); err != nil {
		logger.Debug("destroying buffer params", "err", err)
	}

	buf.Wl = wlBuf
	return buf, nil
}
