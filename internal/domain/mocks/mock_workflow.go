// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

// MockWorkflow is a testify mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow that asserts its expectations on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Mock.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

func (_m *MockWorkflow) Login(ctx context.Context, args domain.LoginArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Logout(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockWorkflow) Whoami(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockWorkflow) Projects(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockWorkflow) Mutants(ctx context.Context, args domain.ListArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Review(ctx context.Context, args domain.ReviewArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Rate(ctx context.Context, args domain.RateArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Algorithms(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockWorkflow) Rank(ctx context.Context, args domain.RankArgs) error {
	return _m.Called(ctx, args).Error(0)
}

func (_m *MockWorkflow) Fields(ctx context.Context, args domain.FieldsArgs) error {
	return _m.Called(ctx, args).Error(0)
}
