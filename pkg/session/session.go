// Package session provides an in-memory, cookie-keyed session store.
//
// Each client is identified by an opaque identifier carried in the CookieName
// cookie. Per identifier the store keeps a cache of key/value entries that
// expire independently, a fixed TTL after their last write. A Session is the
// per-request view of that cache: Load materializes it before the handler runs
// and Save writes it back afterwards, but only when the handler changed it.
package session

import (
	"iter"
	"maps"
)

// Session holds one client's values for the duration of a single request.
// It is owned by that request and is not safe for concurrent use.
type Session struct {
	values map[string]any
	dirty  bool
}

// New creates an empty, clean session.
func New() *Session {
	return &Session{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value under key if it is a string, or "".
func (s *Session) GetString(key string) string {
	v, _ := s.values[key].(string)
	return v
}

// Set stores value under key and marks the session dirty.
func (s *Session) Set(key string, value any) {
	s.values[key] = value
	s.dirty = true
}

// All returns the entries present at call time. The sequence may be ranged
// over more than once and is unaffected by later Set calls.
func (s *Session) All() iter.Seq2[string, any] {
	snapshot := maps.Clone(s.values)
	return func(yield func(string, any) bool) {
		for k, v := range snapshot {
			if !yield(k, v) {
				return
			}
		}
	}
}

// IsDirty reports whether Set was called since the session was created.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// Len returns the number of entries.
func (s *Session) Len() int {
	return len(s.values)
}

// restore sets a value loaded from the backing cache without marking the
// session dirty.
func (s *Session) restore(key string, value any) {
	s.values[key] = value
}
