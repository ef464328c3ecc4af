package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voxform/internal/domain"
	"voxform/internal/service"
)

// MockFormService is a mock implementation of service.FormService.
type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) ProcessText(ctx context.Context, input service.ProcessTextInput) (*domain.ProcessResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}

func (m *MockFormService) ProcessAudio(ctx context.Context, input service.ProcessAudioInput) (*domain.ProcessResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}

func (m *MockFormService) GetForm(ctx context.Context, sessionID string) (*domain.ProcessResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}

func (m *MockFormService) Reset(ctx context.Context, sessionID string) (*domain.ProcessResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}

func (m *MockFormService) ProviderStatus(ctx context.Context) (*domain.StatusReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusReport), args.Error(1)
}

func (m *MockFormService) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockFormService) ClearCache(ctx context.Context) (*domain.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheStats), args.Error(1)
}

func (m *MockFormService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
