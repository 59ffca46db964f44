package session

import (
	"net/http"
	"time"

	"github.com/txn2/memsession/pkg/pipeline"
)

// Hooks is the registration surface of a request pipeline.
type Hooks interface {
	AddBeforeToStart(fn pipeline.BeforeFunc)
	AddAfterToEnd(fn pipeline.AfterFunc)
}

// Enable creates a MemoryStore with the given TTL (DefaultTTL when zero) and
// registers it on h. See EnableWithConfig.
func Enable(h Hooks, ttl time.Duration) *MemoryStore {
	return EnableWithConfig(h, Config{TTL: ttl})
}

// EnableWithConfig creates a MemoryStore and registers it on h: loading runs
// as the first before hook and saving as the last after hook.
func EnableWithConfig(h Hooks, cfg Config) *MemoryStore {
	store := NewMemoryStore(cfg)

	h.AddBeforeToStart(func(c *pipeline.Context) http.Handler {
		if c.Request == nil {
			return nil
		}
		sess := store.Load(c.Request)
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), sess))
		return nil
	})

	h.AddAfterToEnd(func(c *pipeline.Context) {
		if c.Request == nil || c.Response == nil {
			return
		}
		store.Save(c.Request, c.Response)
	})

	return store
}

// Verify interface compliance.
var _ Hooks = (*pipeline.Pipeline)(nil)
