package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PSE-TRIAGE/triage/internal/adapter"
	adaptermocks "github.com/PSE-TRIAGE/triage/internal/adapter/mocks"
	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
	"github.com/PSE-TRIAGE/triage/pkg"
)

func newTestReviewer(t *testing.T) (review.Reviewer, *adaptermocks.MockReviewAPI, *pkg.QueryCache) {
	t.Helper()

	api := adaptermocks.NewMockReviewAPI(t)
	cache := pkg.NewQueryCache(pkg.WithRetryDelay(0))

	return review.NewReviewer(api, cache, review.NewSessionStore()), api, cache
}

func TestReviewer_EnterLoadsListAndSelectsFirst(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()

	data, err := r.Enter(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 40, 30}, fieldIDs(data.Fields))

	state := r.Store().Snapshot()
	assert.Equal(t, 5, state.ProjectID)
	assert.Equal(t, []int{3, 1, 2}, ids(state.Mutants))
	require.NotNil(t, state.Selected)
	assert.Equal(t, 3, state.Selected.ID)
	assert.False(t, state.IsLoading)
}

func TestReviewer_EnterResetsPreviousProject(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 1).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 1).Return(sampleFields(), nil).Once()
	api.On("Mutants", mock.Anything, 2).Return([]m.MutantOverview{}, nil).Once()
	api.On("FormFields", mock.Anything, 2).Return([]m.FormField{}, nil).Once()

	_, err := r.Enter(ctx, 1)
	require.NoError(t, err)
	require.True(t, r.Select(2))

	_, err = r.Enter(ctx, 2)
	require.NoError(t, err)

	state := r.Store().Snapshot()
	assert.Equal(t, 2, state.ProjectID)
	assert.Empty(t, state.Mutants)
	assert.Nil(t, state.Selected, "selection never carries over between projects")
}

func TestReviewer_EnterFailureClearsLoading(t *testing.T) {
	r, api, _ := newTestReviewer(t)

	api.On("Mutants", mock.Anything, 5).Return(nil, &adapter.APIError{StatusCode: 404}).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Maybe()

	_, err := r.Enter(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNotFound)

	state := r.Store().Snapshot()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Mutants)
}

func TestReviewer_ApplyDropsInactiveProject(t *testing.T) {
	r, _, _ := newTestReviewer(t)

	r.BeginProject(1)
	r.BeginProject(2)

	assert.False(t, r.ApplyMutants(1, sampleMutants()), "late list for a project no longer active is dropped")
	assert.False(t, r.ApplyProject(1, review.ProjectData{Mutants: sampleMutants()}, nil))

	state := r.Store().Snapshot()
	assert.Equal(t, 2, state.ProjectID)
	assert.Empty(t, state.Mutants)
	assert.True(t, state.IsLoading)
}

func TestReviewer_RefreshKeepsSelection(t *testing.T) {
	r, api, cache := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()

	_, err := r.Enter(ctx, 5)
	require.NoError(t, err)
	require.True(t, r.Select(2))

	reordered := []m.MutantOverview{sampleMutants()[2], sampleMutants()[0]}
	api.On("Mutants", mock.Anything, 5).Return(reordered, nil).Once()
	cache.Invalidate(review.MutantsKey(5))

	require.NoError(t, r.Refresh(ctx))

	state := r.Store().Snapshot()
	assert.Equal(t, []int{2, 3}, ids(state.Mutants))
	assert.Equal(t, 2, state.SelectedID())
}

func TestReviewer_RefreshWithoutProject(t *testing.T) {
	r, _, _ := newTestReviewer(t)
	require.ErrorIs(t, r.Refresh(context.Background()), review.ErrNoProject)
}

func TestReviewer_RefreshServedFromFreshCache(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()

	_, err := r.Enter(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, r.Refresh(ctx))
}

func TestReviewer_SelectUnknownID(t *testing.T) {
	r, _, _ := newTestReviewer(t)
	assert.False(t, r.Select(1))
	assert.Nil(t, r.Store().Snapshot().Selected)
}

func TestReviewer_Inspect(t *testing.T) {
	r, api, _ := newTestReviewer(t)

	detail := m.MutantDetail{ID: 7, ProjectID: 5, Status: m.StatusSurvived}
	rating := ratingFor(7, m.FieldValue{FormFieldID: 10, Value: "3"})

	api.On("Mutant", mock.Anything, 7).Return(detail, nil).Once()
	api.On("MutantSource", mock.Anything, 7).Return(m.SourceCode{}, &adapter.APIError{StatusCode: 404}).Twice()
	api.On("Rating", mock.Anything, 7).Return(rating, nil).Once()

	insp, err := r.Inspect(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, insp.MutantID)
	assert.Equal(t, detail, insp.Detail)
	assert.Equal(t, rating, insp.Rating)
	assert.ErrorIs(t, insp.SourceErr, adapter.ErrNotFound, "missing source does not fail the inspection")

	_, err = r.Inspect(context.Background(), 7)
	require.NoError(t, err, "detail and rating are served from the cache; the failed source is asked again")
}

func TestReviewer_InspectDetailFailure(t *testing.T) {
	r, api, _ := newTestReviewer(t)

	api.On("Mutant", mock.Anything, 7).Return(m.MutantDetail{}, errors.New("boom")).Once()
	api.On("MutantSource", mock.Anything, 7).Return(m.SourceCode{}, nil).Maybe()
	api.On("Rating", mock.Anything, 7).Return(nil, nil).Maybe()

	_, err := r.Inspect(context.Background(), 7)
	require.Error(t, err)
}

func TestReviewer_SubmitValidationNeverReachesNetwork(t *testing.T) {
	r, _, _ := newTestReviewer(t)

	form := review.NewReviewForm()
	form.Sync(sampleFields(), &m.MutantOverview{ID: 3}, nil)

	_, err := r.Submit(context.Background(), 3, form)
	require.ErrorIs(t, err, review.ErrInvalidForm)
}

func TestReviewer_SubmitSuccess(t *testing.T) {
	r, api, cache := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()
	api.On("Projects", mock.Anything).Return([]m.Project{{ID: 5, TotalMutants: 3, ReviewedMutants: 1}}, nil).Once()

	_, err := r.Enter(ctx, 5)
	require.NoError(t, err)
	_, err = r.Projects(ctx)
	require.NoError(t, err)

	form := review.NewReviewForm()
	form.Sync(sampleFields(), &m.MutantOverview{ID: 3}, nil)
	require.NoError(t, form.SetInput(10, "5"))

	want := m.Rating{ID: 9, MutantID: 3, UserID: 1, FieldValues: []m.FieldValue{{ID: 1, FormFieldID: 10, RatingID: 9, Value: "5"}}}
	api.On("SubmitRating", mock.Anything, 3, form.Submission()).Return(want, nil).Once()

	got, err := r.Submit(ctx, 3, form)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	state := r.Store().Snapshot()
	assert.True(t, state.Mutants[0].Rated)
	assert.True(t, state.Selected.Rated)

	cached, ok := pkg.Peek[*m.Rating](cache, review.RatingKey(3))
	require.True(t, ok)
	assert.Equal(t, want, *cached)

	list := cache.Lookup(review.MutantsKey(5))
	assert.True(t, list.Stale)
	assert.True(t, list.Value.([]m.MutantOverview)[0].Rated, "cached list is patched before it is refetched")
	assert.True(t, cache.Lookup(review.ProjectsKey()).Stale)
}

func TestReviewer_ReloadAfterSubmitDoesNotJoinEarlierFetch(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	r.BeginProject(5)
	require.True(t, r.ApplyMutants(5, sampleMutants()))

	started := make(chan struct{})
	release := make(chan struct{})

	afterSubmit := sampleMutants()
	afterSubmit[0].Rated = true

	api.On("Mutants", mock.Anything, 5).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(sampleMutants(), nil).Once()
	api.On("Mutants", mock.Anything, 5).Return(afterSubmit, nil).Once()
	api.On("SubmitRating", mock.Anything, 3, mock.Anything).Return(m.Rating{ID: 9, MutantID: 3}, nil).Once()

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, err := r.LoadMutants(ctx, 5)
		assert.NoError(t, err)
	}()

	<-started

	_, err := r.SendRating(ctx, 5, 3, m.RatingSubmission{FieldValues: []m.FieldValueSubmission{{FormFieldID: 10, Value: "4"}}})
	require.NoError(t, err)
	r.ConfirmRated(3)

	reloaded, err := r.LoadMutants(ctx, 5)
	require.NoError(t, err)
	assert.True(t, reloaded[0].Rated, "the reload after a submit must reach the server")

	r.ApplyMutants(5, reloaded)
	assert.True(t, r.Store().Snapshot().Mutants[0].Rated)

	close(release)
	<-done
}

func TestReviewer_SubmitFailureLeavesStateUntouched(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()

	_, err := r.Enter(ctx, 5)
	require.NoError(t, err)

	form := review.NewReviewForm()
	form.Sync(sampleFields(), &m.MutantOverview{ID: 3}, nil)
	require.NoError(t, form.SetInput(10, "2"))
	require.NoError(t, form.SetInput(30, "my notes"))

	api.On("SubmitRating", mock.Anything, 3, mock.Anything).Return(m.Rating{}, &adapter.APIError{StatusCode: 409}).Once()

	_, err = r.Submit(ctx, 3, form)
	require.ErrorIs(t, err, adapter.ErrConflict)

	assert.False(t, r.Store().Snapshot().Mutants[0].Rated)

	v, _ := form.Value(30)
	assert.Equal(t, "my notes", v.Text, "entered values survive a failed submit")
}

func TestReviewer_ApplyAlgorithmReloadsList(t *testing.T) {
	r, api, _ := newTestReviewer(t)
	ctx := context.Background()

	api.On("Mutants", mock.Anything, 5).Return(sampleMutants(), nil).Once()
	api.On("FormFields", mock.Anything, 5).Return(sampleFields(), nil).Once()

	_, err := r.Enter(ctx, 5)
	require.NoError(t, err)

	result := m.AlgorithmResult{Success: true, AlgorithmName: "Random", MutantsRanked: 3}
	ranked := []m.MutantOverview{sampleMutants()[1], sampleMutants()[2], sampleMutants()[0]}

	api.On("ApplyAlgorithm", mock.Anything, 5, "random").Return(result, nil).Once()
	api.On("Mutants", mock.Anything, 5).Return(ranked, nil).Once()

	got, err := r.ApplyAlgorithm(ctx, "random")
	require.NoError(t, err)
	assert.Equal(t, result, got)
	assert.Equal(t, []int{1, 2, 3}, ids(r.Store().Snapshot().Mutants))
}

func TestReviewer_ApplyAlgorithmNeedsProject(t *testing.T) {
	r, _, _ := newTestReviewer(t)

	_, err := r.ApplyAlgorithm(context.Background(), "random")
	require.ErrorIs(t, err, review.ErrNoProject)
}

func TestReviewer_TemporaryFailureRetriedOnce(t *testing.T) {
	r, api, _ := newTestReviewer(t)

	api.On("Algorithms", mock.Anything).Return(nil, &adapter.APIError{StatusCode: 503}).Once()
	api.On("Algorithms", mock.Anything).Return([]m.Algorithm{{ID: "random"}}, nil).Once()

	algorithms, err := r.Algorithms(context.Background())
	require.NoError(t, err)
	assert.Len(t, algorithms, 1)
}
