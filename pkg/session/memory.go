package session

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"
)

// DefaultTTL is the entry lifetime used when Config.TTL is zero.
const DefaultTTL = 10 * time.Minute

// Config configures a MemoryStore.
type Config struct {
	// TTL is how long an entry stays visible after it was last saved.
	TTL time.Duration

	// Cookie sets the attributes of newly issued identifier cookies.
	Cookie CookieOptions

	// Metrics receives store activity. Nil disables reporting.
	Metrics Metrics

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// MemoryStore keeps sessions in process memory, one expiring cache per
// identifier. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	caches  map[string]*entryCache
	ttl     time.Duration
	cookie  CookieOptions
	metrics Metrics
	now     func() time.Time

	routineMu sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(cfg Config) *MemoryStore {
	s := &MemoryStore{
		caches:  make(map[string]*entryCache),
		ttl:     cfg.TTL,
		cookie:  cfg.Cookie.normalize(),
		metrics: cfg.Metrics,
		now:     cfg.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CookieName returns the name of the identifier cookie.
func (*MemoryStore) CookieName() string {
	return CookieName
}

// TTL returns the entry lifetime.
func (s *MemoryStore) TTL() time.Duration {
	return s.ttl
}

// Load builds the session for r from the live entries of the identifier it
// presents. Missing cookies and unknown or fully expired identifiers yield an
// empty session. The returned session is never dirty.
func (s *MemoryStore) Load(r *http.Request) *Session {
	sess := New()

	id := requestID(r)
	if id == "" {
		s.metrics.ObserveLoad(false, 0)
		return sess
	}

	s.mu.RLock()
	cache, ok := s.caches[id]
	keys := 0
	if ok {
		keys = cache.copyLive(sess, s.now())
	}
	s.mu.RUnlock()

	s.metrics.ObserveLoad(keys > 0, keys)
	return sess
}

// Save writes the session attached to r back into the store when it is
// dirty. A request without an identifier gets a new one, issued on w as a
// cookie. Every entry of the session is rewritten with a fresh deadline.
func (s *MemoryStore) Save(r *http.Request, w http.ResponseWriter) {
	if r == nil {
		return
	}
	sess := FromContext(r.Context())
	if sess == nil || !sess.IsDirty() {
		return
	}

	id := requestID(r)
	minted := false
	if id == "" {
		id = generateID()
		minted = true
		http.SetCookie(w, s.cookie.cookie(id))
		slog.Debug("session: issued identifier", "path", r.URL.Path)
	}

	expiresAt := s.now().Add(s.ttl)
	keys := 0
	s.withCache(id, func(c *entryCache) {
		for k, v := range sess.All() {
			c.put(k, v, expiresAt)
			keys++
		}
	})

	s.metrics.ObserveSave(minted, keys)
}

// withCache runs fn with the cache for id, creating it if needed. fn runs
// under the read lock so a concurrent Cleanup cannot drop the cache while it
// is being written.
func (s *MemoryStore) withCache(id string, fn func(c *entryCache)) {
	s.mu.RLock()
	if c, ok := s.caches[id]; ok {
		fn(c)
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[id]
	if !ok {
		c = newEntryCache()
		s.caches[id] = c
	}
	fn(c)
}

// Len returns the number of identifiers with a backing cache, including ones
// whose entries have all expired but have not been swept yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.caches)
}

// Cleanup removes expired entries and forgets identifiers left with none.
// Each cache is swept under its own lock; the store-wide write lock is only
// taken to drop identifiers that are still empty.
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.RLock()
	caches := make(map[string]*entryCache, len(s.caches))
	maps.Copy(caches, s.caches)
	s.mu.RUnlock()

	now := s.now()
	expired := 0
	var empty []string
	for id, c := range caches {
		removed, remaining := c.sweep(now)
		expired += removed
		if remaining == 0 {
			empty = append(empty, id)
		}
	}

	dropped := 0
	if len(empty) > 0 {
		s.mu.Lock()
		for _, id := range empty {
			// Saves write under the read lock, so a cache that is still
			// empty here cannot be mid-write.
			if c, ok := s.caches[id]; ok && c == caches[id] && c.len() == 0 {
				delete(s.caches, id)
				dropped++
			}
		}
		s.mu.Unlock()
	}

	s.metrics.ObserveCleanup(expired, dropped)
	return nil
}

// StartCleanupRoutine starts a background goroutine that periodically removes
// expired entries. The goroutine is stopped when Close is called. Calls made
// while a routine is running, or with a non-positive interval, do nothing.
func (s *MemoryStore) StartCleanupRoutine(interval time.Duration) {
	if interval <= 0 {
		slog.Warn("session: cleanup interval must be positive", "interval", interval)
		return
	}

	s.routineMu.Lock()
	defer s.routineMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Cleanup(ctx); err != nil {
					slog.Warn("session cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit.
// It is safe to call Close even if StartCleanupRoutine was never called.
func (s *MemoryStore) Close() error {
	s.routineMu.Lock()
	defer s.routineMu.Unlock()
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
	}
	return nil
}
