// ABOUTME: Tests for the session cache.
// ABOUTME: Validates TTL expiry, sliding refresh, LRU eviction, cleanup, and concurrency safety.

package sessioncache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration, size int) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](ttl, size)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	_, ok := c.Get("never-stored")
	assert.False(t, ok)
}

func TestCache_PutGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	c.Put("session-1", "alpha")
	v, ok := c.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, "alpha", v)

	c.Put("session-1", "beta")
	v, _ = c.Get("session-1")
	assert.Equal(t, "beta", v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("expiring", "v")
	clock.Advance(time.Minute)

	_, ok := c.Get("expiring")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on access")
}

func TestCache_GetRefreshesTTL(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("active", "v")
	clock.Advance(40 * time.Second)
	_, ok := c.Get("active")
	require.True(t, ok)

	clock.Advance(40 * time.Second)
	_, ok = c.Get("active")
	assert.True(t, ok, "access should extend the lifetime")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 3)

	c.Put("first", "1")
	c.Put("second", "2")
	c.Put("third", "3")

	// Touch first so second becomes the eviction candidate.
	_, _ = c.Get("first")
	c.Put("fourth", "4")

	_, ok := c.Get("second")
	assert.False(t, ok, "second should be evicted")
	for _, k := range []string{"first", "third", "fourth"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 3)

	c.Put("gone", "v")
	assert.True(t, c.Delete("gone"))
	assert.False(t, c.Delete("gone"))
	_, ok := c.Get("gone")
	assert.False(t, ok)
}

func TestCache_Cleanup(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("old-1", "v")
	c.Put("old-2", "v")
	clock.Advance(30 * time.Second)
	c.Put("fresh", "v")
	clock.Advance(45 * time.Second)

	c.runCleanup()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](time.Minute, 1000)
	defer c.Close()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("s-%d-%d", id, j%10)
				c.Put(key, j)
				c.Get(key)
				if j%7 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()

	c.Put("final", 1)
	v, ok := c.Get("final")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_Close(t *testing.T) {
	c := New[string](time.Minute, 10)
	c.Close()
	c.Close()
}
