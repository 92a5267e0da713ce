package service

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
)

// memCache is an in-process cache.Cache with the same generation rules as
// the Redis one.
type memCache struct {
	mu   sync.Mutex
	vals map[string][]byte
	gens map[string]int64
}

func newMemCache() *memCache {
	return &memCache{vals: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	b, ok := c.vals[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, sonic.Unmarshal(b, dest)
}

func (c *memCache) Generation(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memCache) SetJSONIf(_ context.Context, key string, gen int64, value any) (bool, error) {
	b, err := sonic.Marshal(value)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false, nil
	}
	c.vals[key] = b
	return true, nil
}

func (c *memCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.vals, key)
	return nil
}

func (c *memCache) Close() error { return nil }
