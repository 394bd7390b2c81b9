// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PSE-TRIAGE/triage/internal/adapter"
	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// MockReviewAPI is a testify mock of adapter.ReviewAPI.
type MockReviewAPI struct {
	mock.Mock
}

var _ adapter.ReviewAPI = (*MockReviewAPI)(nil)

// NewMockReviewAPI creates a MockReviewAPI that asserts its expectations on cleanup.
func NewMockReviewAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReviewAPI {
	mockAPI := &MockReviewAPI{}
	mockAPI.Mock.Test(t)

	t.Cleanup(func() { mockAPI.AssertExpectations(t) })

	return mockAPI
}

func (_m *MockReviewAPI) Login(ctx context.Context, username, password string) (m.Credentials, error) {
	args := _m.Called(ctx, username, password)
	return args.Get(0).(m.Credentials), args.Error(1)
}

func (_m *MockReviewAPI) Logout(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

func (_m *MockReviewAPI) CurrentUser(ctx context.Context) (m.User, error) {
	args := _m.Called(ctx)
	return args.Get(0).(m.User), args.Error(1)
}

func (_m *MockReviewAPI) Projects(ctx context.Context) ([]m.Project, error) {
	args := _m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]m.Project), args.Error(1)
}

func (_m *MockReviewAPI) FormFields(ctx context.Context, projectID int) ([]m.FormField, error) {
	args := _m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]m.FormField), args.Error(1)
}

func (_m *MockReviewAPI) Mutants(ctx context.Context, projectID int) ([]m.MutantOverview, error) {
	args := _m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]m.MutantOverview), args.Error(1)
}

func (_m *MockReviewAPI) Mutant(ctx context.Context, mutantID int) (m.MutantDetail, error) {
	args := _m.Called(ctx, mutantID)
	return args.Get(0).(m.MutantDetail), args.Error(1)
}

func (_m *MockReviewAPI) MutantSource(ctx context.Context, mutantID int) (m.SourceCode, error) {
	args := _m.Called(ctx, mutantID)
	return args.Get(0).(m.SourceCode), args.Error(1)
}

func (_m *MockReviewAPI) Rating(ctx context.Context, mutantID int) (*m.Rating, error) {
	args := _m.Called(ctx, mutantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*m.Rating), args.Error(1)
}

func (_m *MockReviewAPI) SubmitRating(ctx context.Context, mutantID int, sub m.RatingSubmission) (m.Rating, error) {
	args := _m.Called(ctx, mutantID, sub)
	return args.Get(0).(m.Rating), args.Error(1)
}

func (_m *MockReviewAPI) Algorithms(ctx context.Context) ([]m.Algorithm, error) {
	args := _m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]m.Algorithm), args.Error(1)
}

func (_m *MockReviewAPI) ApplyAlgorithm(ctx context.Context, projectID int, algorithmID string) (m.AlgorithmResult, error) {
	args := _m.Called(ctx, projectID, algorithmID)
	return args.Get(0).(m.AlgorithmResult), args.Error(1)
}
