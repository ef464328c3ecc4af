// Package session serializes mutations of one session's form state.
package session

import (
	"context"
	"fmt"
	"sync"

	"voxform/internal/domain"
	"voxform/internal/port"
)

// Manager wraps a SessionStore with a per-session mutex so load, mutate and
// save never interleave for the same id.
type Manager struct {
	store port.SessionStore

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a Manager over store.
func NewManager(store port.SessionStore) *Manager {
	return &Manager{store: store, locks: make(map[string]*sessionLock)}
}

// Store exposes the underlying store for health checks.
func (m *Manager) Store() port.SessionStore { return m.store }

func (m *Manager) acquire(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Update loads the session, applies fn and saves the result. If fn returns
// an error nothing is saved. fn receives a private copy. Stores that can
// lock a session themselves run the whole update in one transaction.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.FormState) error) (*domain.FormState, error) {
	release := m.acquire(id)
	defer release()

	if ls, ok := m.store.(port.LockingSessionStore); ok {
		state, err := ls.Update(ctx, id, func(st *domain.FormState) error {
			st.SessionID = id
			return fn(st)
		})
		if err != nil {
			return nil, err
		}
		return state.Clone(), nil
	}

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session.Update load: %w", err)
	}
	state = state.Clone()
	state.SessionID = id
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("session.Update save: %w", err)
	}
	return state.Clone(), nil
}

// Get returns a copy of the session's form; unknown sessions are empty.
func (m *Manager) Get(ctx context.Context, id string) (*domain.FormState, error) {
	release := m.acquire(id)
	defer release()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session.Get: %w", err)
	}
	state = state.Clone()
	state.SessionID = id
	return state, nil
}

// Reset clears the session and returns the empty form.
func (m *Manager) Reset(ctx context.Context, id string) (*domain.FormState, error) {
	release := m.acquire(id)
	defer release()

	if err := m.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("session.Reset: %w", err)
	}
	return domain.NewFormState(id), nil
}
