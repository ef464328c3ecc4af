package port

import (
	"context"

	"voxform/internal/domain"
)

// SubmissionRepository records completed forms.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	List(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)
}
