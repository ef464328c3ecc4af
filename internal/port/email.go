package port

import (
	"context"

	"voxform/internal/domain"
)

// EmailSender delivers completion confirmations.
type EmailSender interface {
	SendConfirmation(ctx context.Context, sub *domain.Submission) error
}
