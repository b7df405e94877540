package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/searcher/executor"
)

// LRU is an in-process result cache. A capacity of zero or less disables
// eviction, so the cache grows with the number of distinct queries.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List
	evictions atomic.Int64
}

type entry struct {
	key    string
	result *executor.SearchResult
}

func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

func (c *LRU) Get(key string) (*executor.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).result, true
	}
	return nil, false
}

func (c *LRU) Set(key string, result *executor.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry).result = result
		return
	}
	c.items[key] = c.evictList.PushFront(&entry{key: key, result: result})
	if c.capacity <= 0 {
		return
	}
	for c.evictList.Len() > c.capacity {
		c.removeElement(c.evictList.Back())
		c.evictions.Add(1)
	}
}

// Purge drops every entry.
func (c *LRU) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	return n
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU) Evictions() int64 {
	return c.evictions.Load()
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*entry).key)
}
