package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Counter counts hits per key in fixed windows. Incr reports the count so
// far in the current window and how long until it resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Store is a Cache that can also back rate limit counters.
type Store interface {
	Cache
	Counter
}

// New returns a Redis cache when addr is set and an in-process one otherwise.
func New(addr string) Store {
	if addr == "" {
		return NewMemory()
	}
	return NewRedis(addr)
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// counterPruneSize is the map size above which expired entries and windows
// are dropped on the next write.
const counterPruneSize = 4096

type windowCount struct {
	count int64
	reset time.Time
}

type Memory struct {
	mu       sync.Mutex
	data     map[string]memoryEntry
	counters map[string]*windowCount
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]memoryEntry),
		counters: make(map[string]*windowCount),
		now:      time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		delete(m.data, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if len(m.data) >= counterPruneSize {
		for k, e := range m.data {
			if !e.expires.IsZero() && !now.Before(e.expires) {
				delete(m.data, k)
			}
		}
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	m.data[key] = entry
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if len(m.counters) >= counterPruneSize {
		for k, c := range m.counters {
			if !now.Before(c.reset) {
				delete(m.counters, k)
			}
		}
	}
	c, ok := m.counters[key]
	if !ok || !now.Before(c.reset) {
		c = &windowCount{reset: now.Add(window)}
		m.counters[key] = c
	}
	c.count++
	return c.count, c.reset.Sub(now), nil
}

func (m *Memory) Close() error {
	return nil
}
