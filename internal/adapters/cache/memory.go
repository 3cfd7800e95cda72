package cache

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = 30 * time.Second

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process TTL cache for dashboard views. Expired entries are
// recomputed on the next read; there is no background sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: map[string]memoryEntry{},
		nowFn:   time.Now,
	}
}

func (c *Memory) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := c.nowFn()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	c.mu.Unlock()
	return value, nil
}

func (c *Memory) Clear(context.Context) error {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
	return nil
}
