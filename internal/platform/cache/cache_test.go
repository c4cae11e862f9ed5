package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Fatalf("expected hit with v, got %q %v %v", value, ok, err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	now = now.Add(30 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("expected entry before expiry")
	}
	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryIncrWindow(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, resetIn, err := c.Incr(ctx, "rl:k", time.Minute)
		if err != nil || count != want {
			t.Fatalf("expected count %d, got %d (%v)", want, count, err)
		}
		if resetIn != time.Minute {
			t.Fatalf("expected reset in 1m, got %s", resetIn)
		}
	}

	now = now.Add(45 * time.Second)
	if _, resetIn, _ := c.Incr(ctx, "rl:k", time.Minute); resetIn != 15*time.Second {
		t.Fatalf("expected reset in 15s, got %s", resetIn)
	}

	now = now.Add(15 * time.Second)
	if count, _, _ := c.Incr(ctx, "rl:k", time.Minute); count != 1 {
		t.Fatalf("expected a new window, got count %d", count)
	}
	if _, ok, _ := c.Get(ctx, "rl:k"); ok {
		t.Fatal("expected counters to stay apart from cached values")
	}
}

func TestMemoryPrunesExpiredCounters(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < counterPruneSize; i++ {
		_, _, _ = c.Incr(ctx, "rl:"+strconv.Itoa(i), time.Second)
	}
	now = now.Add(2 * time.Second)
	_, _, _ = c.Incr(ctx, "rl:fresh", time.Second)
	if len(c.counters) != 1 {
		t.Fatalf("expected expired counters pruned, got %d left", len(c.counters))
	}
}

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New("").(*Memory); !ok {
		t.Fatal("expected memory cache without address")
	}
	r, ok := New("127.0.0.1:6379").(*Redis)
	if !ok {
		t.Fatal("expected redis cache with address")
	}
	_ = r.Close()
}

func TestRedisGetSet(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r := NewRedis(addr)
	defer r.Close()
	ctx := context.Background()
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if err := r.Set(ctx, "test-key", "value", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, ok, err := r.Get(ctx, "test-key")
	if err != nil || !ok || value != "value" {
		t.Fatalf("expected hit with value, got %q %v %v", value, ok, err)
	}
	if _, ok, err := r.Get(ctx, "absent-key"); err != nil || ok {
		t.Fatalf("expected clean miss, got %v %v", ok, err)
	}

	key := "test-counter-" + time.Now().Format("150405.000000")
	first, ttl, err := r.Incr(ctx, key, time.Minute)
	if err != nil || first != 1 || ttl <= 0 {
		t.Fatalf("expected first hit with ttl, got %d %s %v", first, ttl, err)
	}
	second, _, err := r.Incr(ctx, key, time.Minute)
	if err != nil || second != 2 {
		t.Fatalf("expected second hit, got %d %v", second, err)
	}
}

func TestMemoryPrunesExpiredEntriesOnSet(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < counterPruneSize; i++ {
		_ = c.Set(ctx, "idem:"+strconv.Itoa(i), "v", time.Second)
	}
	_ = c.Set(ctx, "pinned", "v", 0)
	now = now.Add(time.Hour)
	_ = c.Set(ctx, "idem:fresh", "v", time.Second)
	if len(c.data) != 2 {
		t.Fatalf("expected expired entries pruned, got %d left", len(c.data))
	}
}
