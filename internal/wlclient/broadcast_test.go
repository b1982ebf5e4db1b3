package wlclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/internal/shell"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(42)

	assert.Equal(t, 42, <-ch1)
	assert.Equal(t, 42, <-ch2)
}

func TestBroadcasterSlowSubscriberDropsOldest(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, cancel := b.Subscribe()
	defer cancel()

	// overflow the buffer without draining; Publish must never block
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(i)
	}

	first := <-ch
	assert.Greater(t, first, 0, "oldest events were dropped to make room")

	// everything still buffered arrives in order
	prev := first
	for i := 0; i < subscriberBuffer-1; i++ {
		v := <-ch
		assert.Greater(t, v, prev)
		prev = v
	}
	assert.Equal(t, subscriberBuffer+9, prev, "newest event survives")
}

func TestBroadcasterCancelledSubscriberIgnored(t *testing.T) {
	b := NewBroadcaster[string]()
	ch, cancel := b.Subscribe()
	cancel()
	cancel() // idempotent

	b.Publish("after cancel")

	_, open := <-ch
	assert.False(t, open, "cancelled channel is closed")
	assert.Equal(t, 0, b.Count())
}

func TestBroadcasterIndependentStreams(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1, cancel1 := b.Subscribe()
	_, cancel2 := b.Subscribe()
	defer cancel1()

	cancel2()
	b.Publish(7)

	require.Equal(t, 7, <-ch1, "dropping one subscriber does not affect the rest")
}

func TestWatchClipboardHoldsNoReferences(t *testing.T) {
	c := New()

	_, cancelSub, _ := c.SubscribeClipboard()
	defer cancelSub()
	_, cancelWatch := c.WatchClipboard()
	defer cancelWatch()

	item, added := c.clipboardCache.Insert("text/plain", shell.ClipboardText, "hello", nil)
	require.True(t, added)

	// one counting subscriber means one dismissal evicts the entry; a
	// watch holding a reference would keep it alive here
	removed := c.clipboardCache.Unref(item.ID)
	assert.True(t, removed)
	_, ok := c.clipboardCache.Get(item.ID)
	assert.False(t, ok)
}

func TestRequestQueueOrder(t *testing.T) {
	c := New()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		c.requests <- func() { order = append(order, i) }
	}
	c.drainRequests()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order, "bridge requests run in submission order")
}

func TestRoundTripAfterClose(t *testing.T) {
	c := New()
	c.closed.Store(true)

	err := c.roundTrip(t.Context(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}
