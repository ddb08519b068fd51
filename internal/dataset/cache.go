package dataset

import (
	"container/list"
	"sync"
	"time"

	"cosmetics-dashboard/internal/models"
)

// TableLRU keeps recently parsed tables keyed by content fingerprint, with
// size-based eviction and a TTL. It exists so re-uploading the same file (or
// re-rendering with different filters) skips the normalization pass.
type TableLRU struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
}

type lruEntry struct {
	key       string
	table     *models.SalesTable
	expiresAt time.Time
}

func NewTableLRU(maxSize int, ttl time.Duration) *TableLRU {
	return &TableLRU{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *TableLRU) Get(key string) (*models.SalesTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.remove(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.table, true
}

func (c *TableLRU) Set(key string, table *models.SalesTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &lruEntry{key: key, table: table, expiresAt: time.Now().Add(c.ttl)}
	if elem, ok := c.entries[key]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(entry)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

func (c *TableLRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TableLRU) remove(elem *list.Element) {
	entry := elem.Value.(*lruEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
