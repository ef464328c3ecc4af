package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voxform/internal/domain"
)

// MockPatternLearner is a mock implementation of port.PatternLearner.
type MockPatternLearner struct {
	mock.Mock
}

func (m *MockPatternLearner) Learn(ctx context.Context, text string, fields domain.ExtractedFields, provider string) {
	m.Called(ctx, text, fields, provider)
}

func (m *MockPatternLearner) Stats() domain.CacheStats {
	args := m.Called()
	return args.Get(0).(domain.CacheStats)
}

func (m *MockPatternLearner) Clear() error {
	args := m.Called()
	return args.Error(0)
}
