package ledger

import (
	"container/list"
	"sync"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// view is everything computed from one group snapshot. Views are immutable
// once built; callers receive copies.
type view struct {
	group    *models.Group
	version  int64
	entries  []models.Entry
	balances models.Balances
	debts    []models.SimplifiedDebt
}

// viewCache is an LRU with TTL holding the latest computed view per group.
// A lookup only hits when the cached view was built at the requested version.
type viewCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

type cacheItem struct {
	groupID   string
	view      *view
	expiresAt time.Time
}

func newViewCache(maxSize int, ttl time.Duration) *viewCache {
	return &viewCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// get returns the view for groupID if it was computed at exactly version.
func (c *viewCache) get(groupID string, version int64) (*view, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[groupID]
	if !ok {
		return nil, false
	}

	item := elem.Value.(*cacheItem)
	if c.ttl > 0 && c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}
	if item.view.version != version {
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return item.view, true
}

// set stores v unless a view of a newer version is already cached.
func (c *viewCache) set(v *view) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem{
		groupID:   v.group.ID,
		view:      v,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[v.group.ID]; exists {
		if elem.Value.(*cacheItem).view.version > v.version {
			return
		}
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[v.group.ID] = elem

	// Evict if over capacity
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// invalidate drops the cached view of a group.
func (c *viewCache) invalidate(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[groupID]; exists {
		c.removeElement(elem)
	}
}

func (c *viewCache) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem)
	delete(c.items, item.groupID)
	c.lru.Remove(elem)
}

func (c *viewCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
