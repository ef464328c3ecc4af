package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/domain"
)

func TestMemoryStore_LoadUnknownIsEmpty(t *testing.T) {
	s := NewMemoryStore(0)
	state, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", state.SessionID)
	assert.Len(t, state.MissingFields(), 4)
}

func TestMemoryStore_SaveIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	state := domain.NewFormState("s1")
	state.Merge(domain.ExtractedFields{domain.FieldFullName: "John Doe"})
	require.NoError(t, s.Save(ctx, state))

	state.Values[domain.FieldFullName] = "changed"
	loaded, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", loaded.Get(domain.FieldFullName))
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	state := domain.NewFormState("s1")
	state.Merge(domain.ExtractedFields{domain.FieldEmail: "a@b.com"})
	require.NoError(t, s.Save(ctx, state))

	now = now.Add(2 * time.Minute)
	loaded, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Get(domain.FieldEmail))

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Len())
}

func TestManager_UpdateMergesAcrossCalls(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))

	_, err := m.Update(ctx, "s1", func(st *domain.FormState) error {
		st.Merge(domain.ExtractedFields{domain.FieldFullName: "John Doe"})
		return nil
	})
	require.NoError(t, err)
	state, err := m.Update(ctx, "s1", func(st *domain.FormState) error {
		st.Merge(domain.ExtractedFields{domain.FieldPhone: "555-123-4567"})
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", state.Get(domain.FieldFullName))
	assert.Equal(t, "555-123-4567", state.Get(domain.FieldPhone))
	assert.Equal(t, []domain.FieldName{domain.FieldEmail, domain.FieldAddress}, state.MissingFields())
}

func TestManager_UpdateErrorDoesNotSave(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))

	_, err := m.Update(ctx, "s1", func(st *domain.FormState) error {
		st.Merge(domain.ExtractedFields{domain.FieldFullName: "John Doe"})
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	state, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, state.Get(domain.FieldFullName))
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))

	_, err := m.Update(ctx, "a", func(st *domain.FormState) error {
		st.Merge(domain.ExtractedFields{domain.FieldFullName: "Alice"})
		return nil
	})
	require.NoError(t, err)

	b, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Get(domain.FieldFullName))
}

func TestManager_OneMutationInFlightPerSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Update(ctx, "shared", func(st *domain.FormState) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					old := atomic.LoadInt32(&maxInFlight)
					if n <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				st.Merge(domain.ExtractedFields{domain.FieldAddress: fmt.Sprintf("%d Main Street", i)})
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
	assert.Empty(t, m.locks)
}

func TestManager_ResetClearsCompleteForm(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))
	_, err := m.Update(ctx, "s1", func(st *domain.FormState) error {
		st.Merge(domain.ExtractedFields{
			domain.FieldFullName: "John Doe",
			domain.FieldEmail:    "john@example.com",
			domain.FieldPhone:    "555-123-4567",
			domain.FieldAddress:  "12 Oak Lane",
		})
		require.True(t, st.IsComplete())
		return nil
	})
	require.NoError(t, err)

	state, err := m.Reset(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.IsComplete())
	assert.Len(t, state.MissingFields(), 4)

	state, err = m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, state.MissingFields(), 4)
}
