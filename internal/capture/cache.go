package capture

import (
	"sync"
)

// Cache holds at most one buffer per toplevel id. It is mutated from
// capture-completion callbacks outside the event loop, so structural
// changes take the mutex; the lock is never held across I/O.
type Cache struct {
	mu      sync.Mutex
	buffers map[uint64]*Buffer
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{buffers: make(map[uint64]*Buffer)}
}

// Get returns the cached buffer for the toplevel if it matches the
// requested shape exactly.
func (c *Cache) Get(toplevel uint64, width, height, format uint32) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[toplevel]
	if !ok || !b.Matches(width, height, format) {
		return nil, false
	}
	return b, true
}

// Lookup returns the cached buffer for the toplevel regardless of shape.
func (c *Cache) Lookup(toplevel uint64) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[toplevel]
	return b, ok
}

// Put stores a buffer for the toplevel, closing any replaced buffer after
// the lock is released.
func (c *Cache) Put(toplevel uint64, b *Buffer) {
	c.mu.Lock()
	old := c.buffers[toplevel]
	c.buffers[toplevel] = b
	c.mu.Unlock()

	if old != nil && old != b {
		_ = old.Close()
	}
}

// Drop removes and closes the toplevel's buffer, if any.
func (c *Cache) Drop(toplevel uint64) {
	c.mu.Lock()
	old := c.buffers[toplevel]
	delete(c.buffers, toplevel)
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// Clear removes and closes every buffer.
func (c *Cache) Clear() {
	c.mu.Lock()
	buffers := c.buffers
	c.buffers = make(map[uint64]*Buffer)
	c.mu.Unlock()

	for _, b := range buffers {
		_ = b.Close()
	}
}
