// Package identity exposes who is signed in. An empty identifier means a guest session.
package identity

import "sync"

// Gate reports the current identity and announces changes.
type Gate interface {
	Current() string
	OnChange(listener func(userID string)) (unsubscribe func())
}

// Session is an in-process Gate. Listeners run synchronously on the goroutine that
// changed the identity.
type Session struct {
	mu        sync.Mutex
	userID    string
	listeners map[int]func(string)
	nextID    int
}

// NewSession starts a session signed in as userID ("" for a guest).
func NewSession(userID string) *Session {
	return &Session{userID: userID, listeners: make(map[int]func(string))}
}

// Current implements Gate.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// OnChange implements Gate.
func (s *Session) OnChange(listener func(userID string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SignIn switches the session to userID.
func (s *Session) SignIn(userID string) {
	s.set(userID)
}

// SignOut returns the session to a guest.
func (s *Session) SignOut() {
	s.set("")
}

func (s *Session) set(userID string) {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	listeners := make([]func(string), 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(userID)
	}
}
