package controller

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adaptermocks "github.com/PSE-TRIAGE/triage/internal/adapter/mocks"
	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
	"github.com/PSE-TRIAGE/triage/pkg"
)

func newTestReviewModel(t *testing.T, filter review.FilterMode) (reviewModel, review.Reviewer, *adaptermocks.MockReviewAPI) {
	t.Helper()

	api := adaptermocks.NewMockReviewAPI(t)
	reviewer := review.NewReviewer(api, pkg.NewQueryCache(pkg.WithRetryDelay(0)), review.NewSessionStore())
	reviewer.BeginProject(7)

	return newReviewModel(context.Background(), reviewer, newReviewConfig([]ReviewOption{WithFilter(filter)})), reviewer, api
}

func update(t *testing.T, rm reviewModel, msg tea.Msg) (reviewModel, tea.Cmd) {
	t.Helper()

	next, cmd := rm.Update(msg)

	out, ok := next.(reviewModel)
	require.True(t, ok)

	return out, cmd
}

func keyPress(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// loadedModel returns a model whose project and first inspection have arrived.
func loadedModel(t *testing.T, filter review.FilterMode) (reviewModel, review.Reviewer, *adaptermocks.MockReviewAPI) {
	t.Helper()

	rm, reviewer, api := newTestReviewModel(t, filter)

	rm, cmd := update(t, rm, projectLoadedMsg{
		projectID: 7,
		data:      review.ProjectData{Mutants: testMutants(), Fields: testFields()},
	})
	require.NotNil(t, cmd)
	assert.Equal(t, 3, rm.inspecting)

	content := "class Calc {\n  int add(int a, int b) {\n    return a - b;\n  }\n}"
	rm, _ = update(t, rm, inspectionMsg{inspection: review.Inspection{
		MutantID: 3,
		Detail:   m.MutantDetail{ID: 3, Status: m.StatusSurvived, LineNumber: 3, Mutator: "MathMutator"},
		Source:   m.SourceCode{Content: &content, Found: true},
	}})

	return rm, reviewer, api
}

func TestReviewModel_ProjectLoadedSelectsFirstMutant(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterUnreviewed)

	state := reviewer.Store().Snapshot()
	assert.False(t, state.IsLoading)
	assert.Equal(t, 3, state.SelectedID())
	assert.Equal(t, 0, rm.inspecting)
	require.NotNil(t, rm.inspection)
	assert.Equal(t, testFields(), rm.form.Fields())
	assert.Equal(t, "Submit Review", rm.form.SubmitLabel())
	assert.Contains(t, rm.View(), "MathMutator")
}

func TestReviewModel_ProjectLoadFailureShowsError(t *testing.T) {
	rm, reviewer, _ := newTestReviewModel(t, review.FilterAll)

	rm, cmd := update(t, rm, projectLoadedMsg{projectID: 7, err: errors.New("boom")})

	assert.Nil(t, cmd)
	assert.Equal(t, "boom", rm.errText)
	assert.False(t, reviewer.Store().Snapshot().IsLoading)
}

func TestReviewModel_LateInspectionIsDropped(t *testing.T) {
	rm, _, _ := loadedModel(t, review.FilterAll)

	rm, cmd := update(t, rm, keyPress("j"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, rm.inspecting)
	assert.Nil(t, rm.inspection)

	rm, _ = update(t, rm, inspectionMsg{inspection: review.Inspection{MutantID: 3}})

	assert.Nil(t, rm.inspection)
	assert.Equal(t, 1, rm.inspecting)
}

func TestReviewModel_MovesWithinFilteredList(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, keyPress("j"))
	assert.Equal(t, 2, reviewer.Store().Snapshot().SelectedID(), "rated mutant 1 is skipped")

	rm, cmd := update(t, rm, keyPress("j"))
	assert.Nil(t, cmd, "already at the end")
	assert.Equal(t, 2, reviewer.Store().Snapshot().SelectedID())

	_, _ = update(t, rm, keyPress("k"))
	assert.Equal(t, 3, reviewer.Store().Snapshot().SelectedID())
}

func TestReviewModel_FilterCycles(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, keyPress("f"))

	assert.Equal(t, review.FilterReviewed, rm.filter)
	assert.Equal(t, "Showing reviewed", rm.status)
	assert.Equal(t, 3, reviewer.Store().Snapshot().SelectedID(), "filtering never changes the selection")
}

func TestReviewModel_EditsForm(t *testing.T) {
	rm, _, _ := loadedModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, keyPress("tab"))
	require.Equal(t, focusForm, rm.focus)

	rm, _ = update(t, rm, keyPress("4"))
	rating, _ := rm.form.Value(10)
	assert.Equal(t, review.NumberValue(m.FieldRating, 4), rating)

	rm, _ = update(t, rm, keyPress("j"))
	rm, _ = update(t, rm, keyPress(" "))
	checked, _ := rm.form.Value(20)
	assert.True(t, checked.Bool)

	rm, _ = update(t, rm, keyPress("j"))
	rm, _ = update(t, rm, keyPress("enter"))
	require.True(t, rm.editing)

	rm, _ = update(t, rm, keyPress("looks equivalent"))
	rm, _ = update(t, rm, keyPress("enter"))
	assert.False(t, rm.editing)

	notes, _ := rm.form.Value(30)
	assert.Equal(t, "looks equivalent", notes.Text)
}

func TestReviewModel_InvalidSubmitStaysLocal(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterUnreviewed)

	rm, cmd := update(t, rm, keyPress("s"))

	assert.Nil(t, cmd)
	assert.False(t, rm.submitting)
	assert.Equal(t, focusForm, rm.focus)
	assert.Contains(t, rm.errText, "Severity")
	assert.False(t, reviewer.Store().Snapshot().Selected.Rated)
}

func TestReviewModel_SubmitMarksRated(t *testing.T) {
	rm, reviewer, api := loadedModel(t, review.FilterUnreviewed)

	saved := m.Rating{ID: 50, MutantID: 3, FieldValues: []m.FieldValue{{FormFieldID: 10, Value: "5"}, {FormFieldID: 20, Value: "false"}}}
	api.On("SubmitRating", mock.Anything, 3, m.RatingSubmission{FieldValues: []m.FieldValueSubmission{
		{FormFieldID: 10, Value: "5"},
		{FormFieldID: 20, Value: "false"},
	}}).Return(saved, nil).Once()

	rm, _ = update(t, rm, keyPress("tab"))
	rm, _ = update(t, rm, keyPress("5"))

	rm, cmd := update(t, rm, keyPress("s"))
	require.NotNil(t, cmd)
	assert.True(t, rm.submitting)

	rm, cmd = update(t, rm, cmd())
	assert.NotNil(t, cmd, "list reload follows a save")

	state := reviewer.Store().Snapshot()
	assert.True(t, state.Selected.Rated)
	assert.False(t, rm.submitting)
	assert.Equal(t, "Review of mutant 3 saved", rm.status)
	assert.Equal(t, "Update Review", rm.form.SubmitLabel())
}

func TestReviewModel_SubmitFailureKeepsForm(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, keyPress("tab"))
	rm, _ = update(t, rm, keyPress("2"))

	rm, _ = update(t, rm, submitDoneMsg{mutantID: 3, err: errors.New("server down")})

	assert.Equal(t, "server down", rm.errText)
	assert.False(t, reviewer.Store().Snapshot().Selected.Rated)

	value, _ := rm.form.Value(10)
	assert.Equal(t, review.NumberValue(m.FieldRating, 2), value)
}

func TestReviewModel_FailedInspectionBlocksSubmit(t *testing.T) {
	rm, _, _ := newTestReviewModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, projectLoadedMsg{
		projectID: 7,
		data:      review.ProjectData{Mutants: testMutants(), Fields: testFields()},
	})
	rm, _ = update(t, rm, inspectionMsg{inspection: review.Inspection{MutantID: 3}, err: errors.New("rating unavailable")})

	assert.Nil(t, rm.inspection)
	view := rm.View()
	assert.Contains(t, view, "could not be loaded")
	assert.Contains(t, view, "Press r to retry")
	assert.NotContains(t, view, "Loading details")

	rm, _ = update(t, rm, keyPress("tab"))
	rm, _ = update(t, rm, keyPress("4"))
	require.NoError(t, rm.form.Validate())

	rm, cmd := update(t, rm, keyPress("s"))

	assert.Nil(t, cmd, "an unseeded form is never sent")
	assert.False(t, rm.submitting)
	assert.Contains(t, rm.errText, "nothing was saved")
}

func TestReviewModel_RefreshRetriesFailedInspection(t *testing.T) {
	rm, _, _ := newTestReviewModel(t, review.FilterUnreviewed)

	rm, _ = update(t, rm, projectLoadedMsg{
		projectID: 7,
		data:      review.ProjectData{Mutants: testMutants(), Fields: testFields()},
	})
	rm, _ = update(t, rm, inspectionMsg{inspection: review.Inspection{MutantID: 3}, err: errors.New("timeout")})
	require.Error(t, rm.inspectErr)

	rm, cmd := update(t, rm, keyPress("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, 3, rm.inspecting)
	assert.NoError(t, rm.inspectErr)

	rm, _ = update(t, rm, inspectionMsg{inspection: review.Inspection{
		MutantID: 3,
		Detail:   m.MutantDetail{ID: 3, Status: m.StatusSurvived, Mutator: "MathMutator"},
	}})

	require.NotNil(t, rm.inspection)
	assert.Contains(t, rm.View(), "MathMutator")
}

func TestReviewModel_ListReloadIssuedBeforeSubmitIsDropped(t *testing.T) {
	rm, reviewer, api := loadedModel(t, review.FilterAll)

	api.On("SubmitRating", mock.Anything, 3, mock.Anything).Return(m.Rating{ID: 50, MutantID: 3}, nil).Once()

	rm, _ = update(t, rm, keyPress("r"))
	staleRequest := rm.listRequest

	rm, _ = update(t, rm, keyPress("tab"))
	rm, _ = update(t, rm, keyPress("5"))

	rm, cmd := update(t, rm, keyPress("s"))
	require.NotNil(t, cmd)

	rm, _ = update(t, rm, cmd())
	require.Greater(t, rm.listRequest, staleRequest)

	rm, cmd = update(t, rm, mutantsLoadedMsg{projectID: 7, request: staleRequest, mutants: testMutants()})
	assert.Nil(t, cmd)

	state := reviewer.Store().Snapshot()
	assert.True(t, state.Selected.Rated)
	assert.True(t, state.Mutants[0].Rated, "a pre-submit list must not undo the saved review")

	fresh := testMutants()
	fresh[0].Rated = true

	_, _ = update(t, rm, mutantsLoadedMsg{projectID: 7, request: rm.listRequest, mutants: fresh})
	assert.True(t, reviewer.Store().Snapshot().Mutants[0].Rated)
}

func TestReviewModel_MutantsOfOtherProjectAreDropped(t *testing.T) {
	rm, reviewer, _ := loadedModel(t, review.FilterAll)

	_, cmd := update(t, rm, mutantsLoadedMsg{projectID: 8, mutants: []m.MutantOverview{{ID: 99}}})

	assert.Nil(t, cmd)
	assert.Len(t, reviewer.Store().Snapshot().Mutants, 3)
}

func TestReviewModel_Quit(t *testing.T) {
	rm, _, _ := loadedModel(t, review.FilterAll)

	rm, cmd := update(t, rm, keyPress("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, rm.quitting)
	assert.Empty(t, rm.View())
}
