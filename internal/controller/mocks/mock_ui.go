// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PSE-TRIAGE/triage/internal/controller"
	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

// MockUI is a testify mock of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// NewMockUI creates a MockUI that asserts its expectations on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mockUI := &MockUI{}
	mockUI.Mock.Test(t)

	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

func (_m *MockUI) DisplayCredentials(ctx context.Context, creds m.Credentials) error {
	return _m.Called(ctx, creds).Error(0)
}

func (_m *MockUI) DisplayUser(ctx context.Context, user m.User) error {
	return _m.Called(ctx, user).Error(0)
}

func (_m *MockUI) DisplayProjects(ctx context.Context, projects []m.Project) error {
	return _m.Called(ctx, projects).Error(0)
}

func (_m *MockUI) DisplayMutants(ctx context.Context, mutants []m.MutantOverview, filter review.FilterMode) error {
	return _m.Called(ctx, mutants, filter).Error(0)
}

func (_m *MockUI) DisplayFormFields(ctx context.Context, fields []m.FormField) error {
	return _m.Called(ctx, fields).Error(0)
}

func (_m *MockUI) DisplayRating(ctx context.Context, fields []m.FormField, rating m.Rating) error {
	return _m.Called(ctx, fields, rating).Error(0)
}

func (_m *MockUI) DisplayAlgorithms(ctx context.Context, algorithms []m.Algorithm) error {
	return _m.Called(ctx, algorithms).Error(0)
}

func (_m *MockUI) DisplayAlgorithmResult(ctx context.Context, result m.AlgorithmResult) error {
	return _m.Called(ctx, result).Error(0)
}

func (_m *MockUI) DisplayMessage(ctx context.Context, message string) {
	_m.Called(ctx, message)
}

func (_m *MockUI) Review(ctx context.Context, reviewer review.Reviewer, options ...controller.ReviewOption) error {
	return _m.Called(ctx, reviewer, options).Error(0)
}
