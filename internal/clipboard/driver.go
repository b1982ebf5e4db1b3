package clipboard

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

// dataOffer is the slice of the offer proxy the driver uses, split out so
// the bookkeeping can be exercised without a live connection.
type dataOffer interface {
	ID() uint32
	SetMimeHandler(func(string))
	Receive(mime string, fd int) error
	Destroy() error
}

type offerState struct {
	proxy dataOffer
	mimes []string
}

// Driver owns one seat's data-control device: it follows the offer and
// selection lifecycle for inbound clipboard reads and publishes outbound
// copies through ephemeral sources. Offer and selection handling runs on
// the event-loop goroutine; only the pipe reads happen elsewhere.
type Driver struct {
	manager *protocols.DataControlManager
	device  *protocols.DataControlDevice
	cache   *Cache
	publish func(shell.ClipboardEvent)

	offers    map[uint32]*offerState
	selection *offerState
	source    *protocols.DataControlSource
}

// NewDriver creates the data-control device for the seat and starts
// tracking its selections.
func NewDriver(manager *protocols.DataControlManager, seat *protocols.Seat, cache *Cache, publish func(shell.ClipboardEvent)) (*Driver, error) {
	device, err := manager.GetDataDevice(seat)
	if err != nil {
		return nil, fmt.Errorf("creating data control device: %w", err)
	}

	d := &Driver{
		manager: manager,
		device:  device,
		cache:   cache,
		publish: publish,
		offers:  make(map[uint32]*offerState),
	}
	device.SetOfferHandler(func(offer *protocols.DataControlOffer) { d.handleOffer(offer) })
	device.SetSelectionHandler(d.handleSelection)
	device.SetPrimarySelectionHandler(d.handlePrimarySelection)
	device.SetFinishedHandler(func() {
		logger.Warn("data control device finished; clipboard tracking stopped")
	})
	return d, nil
}

// handleOffer starts tracking a new undetermined offer; its mime list
// accumulates until a selection event resolves it.
func (d *Driver) handleOffer(offer dataOffer) {
	state := &offerState{proxy: offer}
	d.offers[offer.ID()] = state
	offer.SetMimeHandler(func(mime string) {
		state.mimes = append(state.mimes, mime)
	})
}

// dropOffer stops tracking an offer and destroys its proxy.
func (d *Driver) dropOffer(state *offerState) {
	delete(d.offers, state.proxy.ID())
	if err := state.proxy.Destroy(); err != nil {
		logger.Debug("destroying clipboard offer", "err", err)
	}
}

// handlePrimarySelection releases the offer the primary selection
// references. The primary selection itself is not tracked; the device is
// bound at v2 so these events arrive whether we want them or not, and
// every one carries a fresh offer that would otherwise accumulate.
func (d *Driver) handlePrimarySelection(offerID uint32) {
	if offerID == 0 {
		return
	}
	state, ok := d.offers[offerID]
	if !ok || state == d.selection {
		return
	}
	d.dropOffer(state)
}

// handleSelection resolves an offer to the current selection and schedules
// the read.
func (d *Driver) handleSelection(offerID uint32) {
	// The previous selection's offer is dead once a new one arrives.
	if d.selection != nil {
		d.dropOffer(d.selection)
		d.selection = nil
	}

	if offerID == 0 {
		d.publish(shell.ClipboardEvent{Kind: shell.ClipboardClear})
		return
	}

	state, ok := d.offers[offerID]
	if !ok {
		logger.Warn("selection references unknown offer", "offer", offerID)
		return
	}
	d.selection = state

	// Anything else still tracked was superseded without ever being
	// referenced; release it. A primary_selection event for a released
	// offer finds it absent and is ignored.
	for id, stale := range d.offers {
		if id != offerID {
			d.dropOffer(stale)
		}
	}

	if HasSentinel(state.mimes) {
		// Our own copy coming back; signal the change without re-reading
		// the content.
		d.publish(shell.ClipboardEvent{Kind: shell.ClipboardClear})
		return
	}

	mime, kind, ok := Classify(state.mimes)
	if !ok {
		logger.Debug("selection offers no usable mime type", "mimes", state.mimes)
		return
	}

	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_CLOEXEC); err != nil {
		logger.Error("creating clipboard read pipe", "err", err)
		return
	}
	if err := state.proxy.Receive(mime, fds[1]); err != nil {
		logger.Error("requesting clipboard content", "mime", mime, "err", err)
		unix.Close(fds[0])
		unix.Close(fds[1])
		return
	}
	// The compositor holds the write end now.
	unix.Close(fds[1])

	go d.readSelection(fds[0], mime, kind)
}

// readSelection drains the pipe off the event loop and inserts the result
// into the cache. Read failures are logged and the item is not emitted.
func (d *Driver) readSelection(fd int, mime string, kind shell.ClipboardKind) {
	f := os.NewFile(uintptr(fd), "clipboard-read")
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("reading clipboard selection", "mime", mime, "err", err)
		return
	}
	if len(data) == 0 {
		logger.Debug("empty clipboard selection", "mime", mime)
		return
	}

	var item shell.ClipboardItem
	var added bool
	if kind == shell.ClipboardText {
		item, added = d.cache.Insert(mime, kind, string(data), nil)
	} else {
		item, added = d.cache.Insert(mime, kind, "", data)
	}

	kindEvent := shell.ClipboardActivate
	if added {
		kindEvent = shell.ClipboardAdd
	}
	d.publish(shell.ClipboardEvent{Kind: kindEvent, Item: item})
}

// Copy publishes an item as the seat's selection. Must be called on the
// event-loop goroutine (the client routes it through the bridge).
func (d *Driver) Copy(item shell.ClipboardItem) error {
	source, err := d.manager.CreateDataSource()
	if err != nil {
		return fmt.Errorf("creating data source: %w", err)
	}

	payload := item.Data
	if item.Kind == shell.ClipboardText {
		payload = []byte(item.Text)
	}

	source.SetSendHandler(func(mime string, fd uintptr) {
		go func() {
			f := os.NewFile(fd, "clipboard-write")
			defer f.Close()
			if _, err := f.Write(payload); err != nil {
				logger.Error("writing clipboard payload", "mime", mime, "err", err)
			}
		}()
	})
	source.SetCancelledHandler(func() {
		if d.source == source {
			d.source = nil
		}
		if err := source.Destroy(); err != nil {
			logger.Debug("destroying cancelled data source", "err", err)
		}
	})

	if err := source.Offer(SentinelMime); err != nil {
		return fmt.Errorf("offering sentinel mime: %w", err)
	}
	if err := source.Offer(item.Mime); err != nil {
		return fmt.Errorf("offering mime %s: %w", item.Mime, err)
	}
	if err := d.device.SetSelection(source); err != nil {
		return fmt.Errorf("setting selection: %w", err)
	}

	d.source = source
	return nil
}
