package result_cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultTTL               = 180 * time.Second
	DefaultEmbeddingCapacity = 200
	DefaultSearchCapacity    = 300
)

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// Cache is a bounded TTL cache with least-recently-used eviction. A Get on a
// live entry refreshes its recency but never its expiry. Expired entries are
// reported absent and reclaimed lazily when overwritten or evicted.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = oldest, back = most recently used

	now func() time.Time
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key, or false if the key is missing or
// past its expiry.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		// Expired entries stay in the map until overwritten or evicted,
		// but are never served.
		return nil, false
	}
	c.order.MoveToBack(el)
	return e.value, true
}

// Set inserts or overwrites key with a fresh expiry. When the cache is over
// capacity the least recently used entry is removed.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToBack(el)
		return
	}

	el := c.order.PushBack(&entry{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Len returns the number of entries currently held, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
