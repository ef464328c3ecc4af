package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voxform/internal/domain"
)

// MockAudioArchive is a mock implementation of port.AudioArchive.
type MockAudioArchive struct {
	mock.Mock
}

func (m *MockAudioArchive) Archive(ctx context.Context, sessionID string, audio []byte, format domain.AudioFormat) (string, error) {
	args := m.Called(ctx, sessionID, audio, format)
	return args.String(0), args.Error(1)
}
