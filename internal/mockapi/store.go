package mockapi

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type record = map[string]any

// collection holds the records of one resource kind in insertion order.
type collection struct {
	mu    sync.RWMutex
	order []string
	items map[string]record
	now   func() time.Time
}

func newCollection(now func() time.Time) *collection {
	return &collection{items: make(map[string]record), now: now}
}

func (c *collection) list() []record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, maps.Clone(c.items[id]))
	}
	return out
}

func (c *collection) get(id string) (record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(item), true
}

func (c *collection) create(fields record) record {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := maps.Clone(fields)
	now := c.now().UTC()
	item["id"] = uuid.NewString()
	item["createdAt"] = now
	item["updatedAt"] = now

	id := item["id"].(string)
	c.items[id] = item
	c.order = append(c.order, id)
	return maps.Clone(item)
}

func (c *collection) update(id string, fields record) (record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.items[id]
	if !ok {
		return nil, false
	}

	item := maps.Clone(fields)
	item["id"] = id
	item["createdAt"] = existing["createdAt"]
	item["updatedAt"] = c.now().UTC()
	c.items[id] = item
	return maps.Clone(item), true
}

func (c *collection) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(other string) bool { return other == id })
	return true
}
