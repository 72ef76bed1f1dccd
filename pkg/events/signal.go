// Package events provides process-wide notification channels.
package events

import "sync"

// Signal is a single-writer, multi-reader notification. Emit never blocks:
// each subscriber has a one-slot buffer, so bursts coalesce into a single
// pending delivery.
type Signal struct {
	mu     sync.Mutex
	name   string
	subs   map[int]chan struct{}
	nextID int
	count  uint64
}

// NewSignal creates a named signal.
func NewSignal(name string) *Signal {
	return &Signal{
		name: name,
		subs: make(map[int]chan struct{}),
	}
}

// Name returns the signal name.
func (s *Signal) Name() string {
	return s.name
}

// Subscribe registers a reader. The returned func unsubscribes and closes
// the channel; calling it more than once is safe.
func (s *Signal) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Emit notifies every current subscriber.
func (s *Signal) Emit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Count returns how many times the signal has fired.
func (s *Signal) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// AuthError fires when the backend rejects the stored credential (HTTP 401).
var AuthError = NewSignal("auth-error")
