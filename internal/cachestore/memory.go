package cachestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/maypok86/otter"
)

const defaultCapacity = 1024

type memoryStore struct {
	mu          sync.RWMutex
	capacity    int
	generations map[string]*memoryCache
}

type memoryCache struct {
	entries otter.Cache[string, Entry]
}

// NewMemory returns an in-process Store backed by otter caches. Each
// generation holds at most capacity entries.
func NewMemory(capacity int) Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &memoryStore{capacity: capacity, generations: make(map[string]*memoryCache)}
}

func (m *memoryStore) Driver() Driver { return DriverMemory }

func (m *memoryStore) Open(_ context.Context, name string) (Cache, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.generations[name]; ok {
		return c, nil
	}
	entries, err := otter.MustBuilder[string, Entry](m.capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build generation %s: %w", name, err)
	}
	c := &memoryCache{entries: entries}
	m.generations[name] = c
	return c, nil
}

func (m *memoryStore) Keys(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.generations))
	for name := range m.generations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memoryStore) Delete(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	c, ok := m.generations[name]
	delete(m.generations, name)
	m.mu.Unlock()
	if ok {
		c.entries.Close()
	}
	return ok, nil
}

func (m *memoryStore) Match(ctx context.Context, key string) (Entry, bool, error) {
	names, _ := m.Keys(ctx)
	for _, name := range names {
		m.mu.RLock()
		c, ok := m.generations[name]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		if e, found, _ := c.Match(ctx, key); found {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, c := range m.generations {
		c.entries.Close()
		delete(m.generations, name)
	}
	return nil
}

func (c *memoryCache) Put(_ context.Context, key string, entry Entry) error {
	c.entries.Set(key, cloneEntry(entry))
	return nil
}

func (c *memoryCache) Match(_ context.Context, key string) (Entry, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (c *memoryCache) Keys(context.Context) ([]string, error) {
	var keys []string
	c.entries.Range(func(key string, _ Entry) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	return keys, nil
}
