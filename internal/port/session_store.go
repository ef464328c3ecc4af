package port

import (
	"context"

	"voxform/internal/domain"
)

// SessionStore persists FormState keyed by session id.
type SessionStore interface {
	// Load returns the stored form, or an empty form when the session is unknown.
	Load(ctx context.Context, sessionID string) (*domain.FormState, error)
	Save(ctx context.Context, state *domain.FormState) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// LockingSessionStore can run a load, mutate and save of one session as a
// single unit across processes sharing the store.
type LockingSessionStore interface {
	SessionStore
	// Update loads the session under a lock, applies fn and saves the result.
	// An error from fn is returned unchanged and nothing is saved.
	Update(ctx context.Context, sessionID string, fn func(*domain.FormState) error) (*domain.FormState, error)
}
