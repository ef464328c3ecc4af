package session

import (
	"context"
	"sync"
	"time"

	"voxform/internal/domain"
	"voxform/internal/logger"
)

// MemoryStore keeps sessions in process memory. Sessions idle longer than
// ttl are dropped by the janitor; a zero ttl keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.FormState
	seen     map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.FormState),
		seen:     make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*domain.FormState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok || s.expired(sessionID) {
		return domain.NewFormState(sessionID), nil
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, state *domain.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state.Clone()
	s.seen[state.SessionID] = s.now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.seen, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.sessions {
		if s.expired(id) {
			delete(s.sessions, id)
			delete(s.seen, id)
			n++
		}
	}
	return n
}

// StartJanitor sweeps every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logger.Debug(ctx, "session janitor: expired sessions removed", "count", n)
				}
			}
		}
	}()
}

// expired must be called with mu held.
func (s *MemoryStore) expired(id string) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(s.seen[id]) > s.ttl
}
