package session

import (
	"sync"
	"time"
)

// entry is a stored value and the instant it stops being visible.
type entry struct {
	value     any
	expiresAt time.Time
}

// entryCache is the expiring key/value cache behind one session identifier.
// It is safe for concurrent use; no atomicity across keys is provided.
type entryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func newEntryCache() *entryCache {
	return &entryCache{entries: make(map[string]entry)}
}

// put replaces any existing entry for key with a fresh one.
func (c *entryCache) put(key string, value any, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// copyLive copies every entry still visible at now into s and returns the
// number copied.
func (c *entryCache) copyLive(s *Session, now time.Time) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for k, e := range c.entries {
		if now.Before(e.expiresAt) {
			s.restore(k, e.value)
			n++
		}
	}
	return n
}

// sweep removes entries no longer visible at now. It returns how many were
// removed and how many remain.
func (c *entryCache) sweep(now time.Time) (removed, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, len(c.entries)
}

// len returns the number of stored entries, expired or not.
func (c *entryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
