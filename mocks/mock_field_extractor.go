package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voxform/internal/domain"
	"voxform/internal/port"
)

// MockFieldExtractor is a mock implementation of port.FieldExtractor.
type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFieldExtractor) Supports(kind domain.InputKind) bool {
	args := m.Called(kind)
	return args.Bool(0)
}

func (m *MockFieldExtractor) Available(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFieldExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractOutput), args.Error(1)
}

// NewMockFieldExtractor returns a mock that is named, supports every input kind and is available.
func NewMockFieldExtractor(name string) *MockFieldExtractor {
	m := new(MockFieldExtractor)
	m.On("Name").Return(name).Maybe()
	m.On("Supports", mock.Anything).Return(true).Maybe()
	m.On("Available", mock.Anything).Return(nil).Maybe()
	return m
}
