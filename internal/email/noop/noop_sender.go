package noop

import (
	"context"

	"voxform/internal/domain"
	"voxform/internal/logger"
	"voxform/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that only logs.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendConfirmation(ctx context.Context, sub *domain.Submission) error {
	logger.Info(ctx, "noop email: confirmation not sent", "to", sub.Email, "submission_id", sub.ID)
	return nil
}
