// Package session keeps the server-held browsing sessions. A session owns the
// cart and the pending order of one visitor until it is ended or swept.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/cart"
	"github.com/docecupcake/cupcake-backend/internal/checkout"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session has a submission in flight")
)

// State is the mutable part of a session. It is only handed out while the
// session lock is held.
type State struct {
	Cart    *cart.Cart
	Pending *checkout.PendingOrder
}

type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeen   time.Time
	state      State
	submitting bool
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		state:     State{Cart: cart.New()},
	}
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// Edit is Do for changes to the cart or pending order. It fails with
// ErrSessionBusy while a submission is in flight.
func (s *Session) Edit(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSessionBusy
	}
	return fn(&s.state)
}

// Reset empties the cart and discards the pending order.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart.Clear()
	s.state.Pending = nil
}

// Begin marks a submission in flight. It returns false when one already is.
func (s *Session) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Session) End() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}
