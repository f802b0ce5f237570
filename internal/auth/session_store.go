package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps the server side half of a session: session id to user id.
type SessionStore interface {
	// Save stores the session until exp.
	Save(ctx context.Context, sessionID string, userID uint, exp time.Time) error
	// Lookup returns the user id of a live session. ok is false for unknown or expired ids.
	Lookup(ctx context.Context, sessionID string) (userID uint, ok bool, err error)
	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error
}

type memorySession struct {
	userID uint
	exp    time.Time
}

// InMemorySessionStore is a process local SessionStore with a periodic expiry sweep.
type InMemorySessionStore struct {
	sessions map[string]memorySession
	mu       sync.RWMutex
	stop     chan struct{}
	once     sync.Once
}

// NewInMemorySessionStore creates the store and starts its cleanup loop.
func NewInMemorySessionStore() *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[string]memorySession),
		stop:     make(chan struct{}),
	}
	go periodicallyCleanUp(store, time.Minute*5)
	return store
}

func periodicallyCleanUp(store *InMemorySessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			store.CleanUpExpired()
		case <-store.stop:
			return
		}
	}
}

// CleanUpExpired drops every session past its expiry.
func (s *InMemorySessionStore) CleanUpExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if sess.exp.Before(now) {
			delete(s.sessions, id)
		}
	}
}

// Save implements SessionStore.
func (s *InMemorySessionStore) Save(_ context.Context, sessionID string, userID uint, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = memorySession{userID: userID, exp: exp}
	return nil
}

// Lookup implements SessionStore.
func (s *InMemorySessionStore) Lookup(_ context.Context, sessionID string) (uint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sessionID]
	if !exists || sess.exp.Before(time.Now()) {
		return 0, false, nil
	}
	return sess.userID, true, nil
}

// Delete implements SessionStore.
func (s *InMemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close stops the cleanup loop.
func (s *InMemorySessionStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}
