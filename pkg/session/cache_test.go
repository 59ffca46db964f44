package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryCache_PutReplaces(t *testing.T) {
	now := time.Now()
	c := newEntryCache()
	c.put("a", 1, now.Add(time.Minute))
	c.put("a", 2, now.Add(2*time.Minute))

	s := New()
	assert.Equal(t, 1, c.copyLive(s, now))
	v, _ := s.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, now.Add(2*time.Minute), c.entries["a"].expiresAt)
}

func TestEntryCache_CopyLiveFiltersExpired(t *testing.T) {
	now := time.Now()
	c := newEntryCache()
	c.put("live", "yes", now.Add(time.Second))
	c.put("edge", "no", now)
	c.put("old", "no", now.Add(-time.Second))

	s := New()
	assert.Equal(t, 1, c.copyLive(s, now))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "yes", s.GetString("live"))
	assert.False(t, s.IsDirty())
}

func TestEntryCache_Sweep(t *testing.T) {
	now := time.Now()
	c := newEntryCache()
	c.put("live", 1, now.Add(time.Second))
	c.put("old", 2, now.Add(-time.Second))

	removed, remaining := c.sweep(now)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, remaining)

	removed, remaining = c.sweep(now.Add(time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, remaining)
}

func TestEntryCache_ConcurrentAccess(_ *testing.T) {
	now := time.Now()
	c := newEntryCache()

	var wg sync.WaitGroup
	for i := range memTestGoroutines {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for range memTestIterations {
				c.put("k", n, now.Add(time.Minute))
				c.copyLive(New(), now)
				c.sweep(now)
			}
		}(i)
	}
	wg.Wait()
}
