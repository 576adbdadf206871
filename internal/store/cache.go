package store

import "sync"

// Cache holds the decoded collection for each type name.
//
// It is constructed once per process and shared by every Store so that all
// stores for one type name see the same collection. Population is
// first-writer-wins: a collection decoded from disk never clobbers an entry
// already warmed by another path. Entries are never evicted; a warm entry
// stays warm for the process lifetime.
//
// The cache also owns one mutex per type name, serializing the
// load-compute-write sequence of concurrent mutations on the same name.
// Mutations on distinct names do not contend.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	locks   map[string]*sync.Mutex
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]any),
		locks:   make(map[string]*sync.Mutex),
	}
}

// get returns the cached collection for name.
func (c *Cache) get(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[name]
	return v, ok
}

// populateIfEmpty stores rows for name unless an entry already exists.
// Returns true if the entry was written.
func (c *Cache) populateIfEmpty(name string, rows any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		return false
	}
	c.entries[name] = rows
	return true
}

// set unconditionally replaces the entry for name. Called only after a
// successful write, so cache and disk stay in agreement.
func (c *Cache) set(name string, rows any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = rows
}

// lock acquires the per-type-name mutex and returns its unlock function.
func (c *Cache) lock(name string) func() {
	c.mu.Lock()
	m, ok := c.locks[name]
	if !ok {
		m = &sync.Mutex{}
		c.locks[name] = m
	}
	c.mu.Unlock()
	m.Lock()
	return m.Unlock
}
