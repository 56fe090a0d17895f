package filter

import (
	"container/list"
	"sync"
)

// programCache is a thread-safe LRU cache of compiled filters keyed by expression
type programCache struct {
	size  int
	order *list.List
	items map[string]*list.Element
	mu    sync.Mutex
}

type cacheEntry struct {
	expression string
	filter     *Filter
}

func newProgramCache(size int) *programCache {
	return &programCache{
		size:  size,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// get returns the cached filter and marks it most recently used
func (c *programCache) get(expression string) (*Filter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[expression]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(node)
	return node.Value.(*cacheEntry).filter, true
}

// put stores a filter, evicting the least recently used one when full
func (c *programCache) put(f *Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[f.expression]; ok {
		c.order.MoveToFront(node)
		node.Value.(*cacheEntry).filter = f
		return
	}

	c.items[f.expression] = c.order.PushFront(&cacheEntry{expression: f.expression, filter: f})
	if c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).expression)
	}
}

func (c *programCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
