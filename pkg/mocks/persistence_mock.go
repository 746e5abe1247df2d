package mocks

import (
	"context"

	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockRunStore is a mock implementation of persistence.RunStore interface.
type MockRunStore struct {
	mock.Mock
}

var _ persistence.RunStore = (*MockRunStore)(nil)

func (m *MockRunStore) SaveRun(ctx context.Context, run *persistence.Run) error {
	args := m.Called(ctx, run)

	return args.Error(0)
}

func (m *MockRunStore) RunByID(ctx context.Context, id string) (*persistence.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Run), args.Error(1)
}

func (m *MockRunStore) Runs(ctx context.Context, opts persistence.ListRunsOptions) ([]*persistence.Run, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*persistence.Run), args.Error(1)
}

func (m *MockRunStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockRunStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
