// Package store holds UI state behind a single owner. Writers go through
// Update; readers take snapshots or subscribe to changes.
package store

import "sync"

// Store owns a state value of type S. Slices inside S must be treated as
// immutable: replace them, never write into them, so snapshots stay valid.
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	listeners map[int]func(S)
	nextID    int
}

// New creates a store holding initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:     initial,
		listeners: make(map[int]func(S)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn under the lock and notifies subscribers afterwards.
func (s *Store[S]) Update(fn func(*S)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	listeners := s.copyListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// UpdateIf applies fn only when cond holds for the current state, atomically.
// It reports whether fn ran.
func (s *Store[S]) UpdateIf(cond func(S) bool, fn func(*S)) bool {
	s.mu.Lock()
	if !cond(s.state) {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	snapshot := s.state
	listeners := s.copyListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// Set replaces the whole state.
func (s *Store[S]) Set(state S) {
	s.Update(func(cur *S) { *cur = state })
}

// Subscribe registers fn for every change and returns the unsubscribe func.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store[S]) copyListeners() []func(S) {
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]func(S), 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}
