package wlclient

import (
	"sync"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind loses its oldest events.
const subscriberBuffer = 64

// Broadcaster fans one event stream out to independent subscribers. Publish
// never blocks: when a subscriber's buffer is full the oldest buffered
// event is dropped to make room.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[uint64]chan T
	next uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]chan T)}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. Cancel is idempotent; after cancel the channel is
// closed.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan T, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broadcaster[T]) Publish(event T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Full buffer: drop the oldest event and retry once. If
			// another goroutine drained the channel in between, the send
			// simply succeeds.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// Count returns the number of active subscribers.
func (b *Broadcaster[T]) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
