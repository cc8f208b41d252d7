package dedup

import (
	"container/list"
	"context"
	"sync"
)

// Cache remembers recently processed inbound message ids so webhook
// re-deliveries are dropped before any flow logic runs.
type Cache interface {
	Seen(ctx context.Context, messageID string) bool
	Mark(ctx context.Context, messageID string)
}

type memoryCache struct {
	mu       sync.Mutex
	capacity int
	ids      map[string]*list.Element
	order    *list.List
}

// NewMemoryCache returns a process-local bounded cache. Once capacity is
// exceeded the oldest-inserted id is evicted.
func NewMemoryCache(capacity int) Cache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &memoryCache{
		capacity: capacity,
		ids:      make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *memoryCache) Seen(_ context.Context, messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[messageID]
	return ok
}

func (c *memoryCache) Mark(_ context.Context, messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[messageID]; ok {
		return
	}
	c.ids[messageID] = c.order.PushBack(messageID)
	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.ids, oldest.Value.(string))
	}
}

// Len reports the number of cached ids. Test hook.
func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
