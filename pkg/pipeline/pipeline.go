// Package pipeline provides a request pipeline with before and after hooks
// around an http.Handler. Before hooks may short-circuit dispatch; after hooks
// run once the response has been produced but before it reaches the client.
package pipeline

import (
	"log/slog"
	"net/http"
	"sync"
)

// Context carries the request and the buffered response through the hooks.
type Context struct {
	// Request is the inbound request. Before hooks may replace it (for example
	// to attach values to its context); the replacement is what the handler
	// and the after hooks see.
	Request *http.Request

	// Response buffers everything the handler writes.
	Response *Response
}

// BeforeFunc runs before the handler. Returning a non-nil handler
// short-circuits dispatch: that handler produces the response instead.
type BeforeFunc func(c *Context) http.Handler

// AfterFunc runs after the response has been produced.
type AfterFunc func(c *Context)

// Pipeline holds ordered before and after hooks.
type Pipeline struct {
	mu     sync.RWMutex
	before []BeforeFunc
	after  []AfterFunc
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{
		before: make([]BeforeFunc, 0),
		after:  make([]AfterFunc, 0),
	}
}

// AddBeforeToStart adds a hook that runs before all previously added before hooks.
func (p *Pipeline) AddBeforeToStart(fn BeforeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.before = append([]BeforeFunc{fn}, p.before...)
}

// AddBefore appends a before hook.
func (p *Pipeline) AddBefore(fn BeforeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.before = append(p.before, fn)
}

// AddAfterToStart adds an after hook that runs before all previously added
// after hooks.
func (p *Pipeline) AddAfterToStart(fn AfterFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.after = append([]AfterFunc{fn}, p.after...)
}

// AddAfterToEnd appends an after hook so it runs last.
func (p *Pipeline) AddAfterToEnd(fn AfterFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.after = append(p.after, fn)
}

// hooks returns a snapshot of the registered hooks.
func (p *Pipeline) hooks() ([]BeforeFunc, []AfterFunc) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.before, p.after
}

// Handler wraps next with the pipeline. After hooks run even when a before
// hook short-circuited dispatch.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		before, after := p.hooks()

		c := &Context{
			Request:  r,
			Response: NewResponse(),
		}

		var h http.Handler
		for _, fn := range before {
			if h = fn(c); h != nil {
				break
			}
		}
		if h == nil {
			h = next
		}
		h.ServeHTTP(c.Response, c.Request)

		for _, fn := range after {
			fn(c)
		}

		if err := c.Response.Send(w); err != nil {
			slog.Debug("pipeline: writing response failed", "path", r.URL.Path, "error", err)
		}
	})
}
