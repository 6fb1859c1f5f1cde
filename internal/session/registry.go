package session

import (
	"sync"
	"time"
)

// Registry is the in-memory set of live sessions.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewRegistry returns a registry whose sessions expire after idleTimeout
// without a request. A zero timeout disables expiry.
func NewRegistry(idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (r *Registry) Create() *Session {
	s := newSession(r.now())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the live session and refreshes its last-seen time. Expired
// sessions are treated as absent.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := r.now()
	if r.expired(s, now) {
		r.Destroy(id)
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Destroy ends the session. Unknown ids are ignored.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Sweep destroys every session idle past the timeout and reports how many.
// Sessions with a submission in flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s, now) && !s.Submitting() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.idleTimeout > 0 && now.Sub(s.LastSeen()) > r.idleTimeout
}
