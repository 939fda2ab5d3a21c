package cache

import (
	"context"
	"sync"
)

// MemCache is the in-process backend. Concurrent read-check-then-populate is
// an idempotent overwrite, so a plain RWMutex map is enough.
type MemCache struct {
	mu sync.RWMutex
	m  map[Key][]byte
}

func NewMemCache() *MemCache {
	return &MemCache{m: map[Key][]byte{}}
}

func (c *MemCache) Get(_ context.Context, key Key) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *MemCache) Set(_ context.Context, key Key, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = val
	return nil
}

func (c *MemCache) Has(_ context.Context, key Key) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.m[key]
	return ok, nil
}

func (c *MemCache) Delete(_ context.Context, keys ...Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}
