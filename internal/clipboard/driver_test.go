package clipboard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/panelkit/panelkit/internal/shell"
)

// fakeOffer stands in for a data-control offer proxy. Receive writes the
// payload to a dup of the pipe the way the compositor would.
type fakeOffer struct {
	id          uint32
	payload     []byte
	mimeHandler func(string)
	destroyed   bool
}

func (f *fakeOffer) ID() uint32                  { return f.id }
func (f *fakeOffer) SetMimeHandler(h func(string)) { f.mimeHandler = h }
func (f *fakeOffer) Destroy() error              { f.destroyed = true; return nil }

func (f *fakeOffer) Receive(mime string, fd int) error {
	dup, err := unix.Dup(fd)
	if err != nil {
		return err
	}
	go func() {
		w := os.NewFile(uintptr(dup), "offer-write")
		defer w.Close()
		_, _ = w.Write(f.payload)
	}()
	return nil
}

func testDriver() (*Driver, chan shell.ClipboardEvent) {
	events := make(chan shell.ClipboardEvent, 16)
	d := &Driver{
		cache:   NewCache(),
		publish: func(e shell.ClipboardEvent) { events <- e },
		offers:  make(map[uint32]*offerState),
	}
	return d, events
}

func announce(d *Driver, offer *fakeOffer, mimes ...string) {
	d.handleOffer(offer)
	for _, m := range mimes {
		offer.mimeHandler(m)
	}
}

func TestPrimarySelectionOfferReleased(t *testing.T) {
	d, _ := testDriver()

	offer := &fakeOffer{id: 7}
	announce(d, offer, "text/plain")
	d.handlePrimarySelection(7)

	assert.True(t, offer.destroyed)
	assert.Empty(t, d.offers, "primary-selection offers must not accumulate")

	// a cleared primary selection is a no-op
	d.handlePrimarySelection(0)
	assert.Empty(t, d.offers)
}

func TestPrimarySelectionKeepsClipboardSelection(t *testing.T) {
	d, _ := testDriver()

	offer := &fakeOffer{id: 3, payload: []byte("keep")}
	announce(d, offer, "text/plain;charset=utf-8")
	d.handleSelection(3)

	// a primary_selection referencing the clipboard offer must not tear
	// it down
	d.handlePrimarySelection(3)
	assert.False(t, offer.destroyed)
	assert.Len(t, d.offers, 1)
}

func TestSupersededOffersReleased(t *testing.T) {
	d, _ := testDriver()

	first := &fakeOffer{id: 1, payload: []byte("one")}
	announce(d, first, "text/plain;charset=utf-8")
	orphan := &fakeOffer{id: 2}
	announce(d, orphan, "text/plain")
	d.handleSelection(1)

	assert.True(t, orphan.destroyed, "offer superseded without a selection event")
	assert.False(t, first.destroyed)
	assert.Len(t, d.offers, 1)

	second := &fakeOffer{id: 4, payload: []byte("two")}
	announce(d, second, "text/plain;charset=utf-8")
	d.handleSelection(4)

	assert.True(t, first.destroyed, "replaced selection offer is released")
	assert.False(t, second.destroyed)
	assert.Len(t, d.offers, 1)
}

func TestSelectionReadPublishesItem(t *testing.T) {
	d, events := testDriver()

	offer := &fakeOffer{id: 9, payload: []byte("hello")}
	announce(d, offer, "text/plain;charset=utf-8")
	d.handleSelection(9)

	select {
	case e := <-events:
		assert.Equal(t, shell.ClipboardAdd, e.Kind)
		assert.Equal(t, "hello", e.Item.Text)
		assert.Equal(t, shell.ClipboardText, e.Item.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no clipboard event for the read selection")
	}
	assert.Equal(t, 1, d.cache.Len())
}

func TestSentinelSelectionSignalsClear(t *testing.T) {
	d, events := testDriver()

	offer := &fakeOffer{id: 5}
	announce(d, offer, SentinelMime, "text/plain;charset=utf-8")
	d.handleSelection(5)

	require.Len(t, events, 1)
	e := <-events
	assert.Equal(t, shell.ClipboardClear, e.Kind)
	assert.Equal(t, 0, d.cache.Len(), "own selections are not re-read")
}
