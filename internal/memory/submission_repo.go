// Package memory holds in-process repositories used with the memory session store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"voxform/internal/domain"
	"voxform/internal/port"
)

type submissionRepo struct {
	mu   sync.RWMutex
	subs []domain.Submission
}

// NewSubmissionRepo creates an empty in-memory SubmissionRepository.
func NewSubmissionRepo() port.SubmissionRepository {
	return &submissionRepo{}
}

func (r *submissionRepo) Create(_ context.Context, sub *domain.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, *sub)
	return nil
}

// List returns newest first.
func (r *submissionRepo) List(_ context.Context, offset, limit int) ([]domain.Submission, int, error) {
	r.mu.RLock()
	all := make([]domain.Submission, len(r.subs))
	copy(all, r.subs)
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []domain.Submission{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}
