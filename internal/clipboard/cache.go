package clipboard

import (
	"sync"

	"github.com/panelkit/panelkit/internal/shell"
)

type cacheEntry struct {
	item shell.ClipboardItem
	refs int
}

// Cache is the shared clipboard history. Entries are reference-counted so
// independent subscribers can dismiss the same item at different times: an
// entry's count starts at the number of subscribers present at insertion
// and the entry is only physically removed once every subscriber has
// released it (or on an explicit Remove). Mutated from clipboard-read
// goroutines, so all structural changes take the mutex.
type Cache struct {
	mu          sync.Mutex
	nextID      uint64
	order       []*cacheEntry
	byID        map[uint64]*cacheEntry
	subscribers int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{byID: make(map[uint64]*cacheEntry)}
}

// AddSubscriber records one more subscriber; new entries start with a
// matching reference count.
func (c *Cache) AddSubscriber() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers++
}

// RemoveSubscriber records one subscriber going away.
func (c *Cache) RemoveSubscriber() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribers > 0 {
		c.subscribers--
	}
}

// Insert adds a new item built from the given payload, de-duplicating by
// (mime, value): when an equal entry already exists it is returned with
// added=false so the caller emits an Activate instead of an Add.
func (c *Cache) Insert(mime string, kind shell.ClipboardKind, text string, data []byte) (shell.ClipboardItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := shell.ClipboardItem{Mime: mime, Kind: kind, Text: text, Data: data}
	for _, e := range c.order {
		if e.item.Same(candidate) {
			return e.item, false
		}
	}

	c.nextID++
	candidate.ID = c.nextID
	entry := &cacheEntry{item: candidate, refs: c.subscribers}
	c.order = append(c.order, entry)
	c.byID[candidate.ID] = entry
	return candidate, true
}

// Restore re-inserts a previously persisted item keeping insertion order.
// Duplicates by (mime, value) are skipped.
func (c *Cache) Restore(item shell.ClipboardItem) (shell.ClipboardItem, bool) {
	return c.Insert(item.Mime, item.Kind, item.Text, item.Data)
}

// Remove deletes the entry unconditionally, regardless of its reference
// count.
func (c *Cache) Remove(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(id)
}

// Unref decrements the entry's reference count and removes it once the
// count reaches zero. Returns true when the entry was physically removed.
func (c *Cache) Unref(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[id]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	return c.removeLocked(id)
}

func (c *Cache) removeLocked(id uint64) bool {
	e, ok := c.byID[id]
	if !ok {
		return false
	}
	delete(c.byID, id)
	for i, candidate := range c.order {
		if candidate == e {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Get looks an item up by id.
func (c *Cache) Get(id uint64) (shell.ClipboardItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[id]
	if !ok {
		return shell.ClipboardItem{}, false
	}
	return e.item, true
}

// Find looks an item up by (mime, value) equality.
func (c *Cache) Find(item shell.ClipboardItem) (shell.ClipboardItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.order {
		if e.item.Same(item) {
			return e.item, true
		}
	}
	return shell.ClipboardItem{}, false
}

// Items returns all entries oldest first.
func (c *Cache) Items() []shell.ClipboardItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]shell.ClipboardItem, len(c.order))
	for i, e := range c.order {
		items[i] = e.item
	}
	return items
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
