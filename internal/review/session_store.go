// Package review holds the reviewer's session state, the review form engine and
// the coordination between the API gateway, the query cache and both of them.
package review

import (
	"log/slog"
	"slices"
	"sync"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// SessionState is the observable state of one review session.
// ProjectID 0 means no project is active.
type SessionState struct {
	ProjectID int
	Mutants   []m.MutantOverview
	Selected  *m.MutantOverview
	IsLoading bool
}

// SelectedInList resolves the selection against the current list. A selection
// whose id is absent from the list is reported as not found.
func (s SessionState) SelectedInList() (m.MutantOverview, int, bool) {
	if s.Selected == nil {
		return m.MutantOverview{}, -1, false
	}

	idx := slices.IndexFunc(s.Mutants, func(mu m.MutantOverview) bool { return mu.ID == s.Selected.ID })
	if idx < 0 {
		return m.MutantOverview{}, -1, false
	}

	return s.Mutants[idx], idx, true
}

// SelectedID returns the id of the selection, or 0 when nothing is selected.
func (s SessionState) SelectedID() int {
	if s.Selected == nil {
		return 0
	}

	return s.Selected.ID
}

func (s SessionState) clone() SessionState {
	out := s
	out.Mutants = slices.Clone(s.Mutants)

	if s.Selected != nil {
		selected := *s.Selected
		out.Selected = &selected
	}

	return out
}

// Reducers. Each returns the next state and never mutates its input.

func reduceSetProjectID(s SessionState, id int) SessionState {
	s.ProjectID = id
	return s
}

func reduceSetMutants(s SessionState, mutants []m.MutantOverview) SessionState {
	s.Mutants = slices.Clone(mutants)
	return s
}

func reduceSetSelected(s SessionState, mutant *m.MutantOverview) SessionState {
	if mutant == nil {
		s.Selected = nil
		return s
	}

	selected := *mutant
	s.Selected = &selected

	return s
}

func reduceSetIsLoading(s SessionState, loading bool) SessionState {
	s.IsLoading = loading
	return s
}

func reduceEnterProject(s SessionState, id int) SessionState {
	s = reduceSetProjectID(s, id)
	s = reduceSetMutants(s, nil)

	return reduceSetSelected(s, nil)
}

func reduceMarkRated(s SessionState, mutantID int) SessionState {
	mutants := slices.Clone(s.Mutants)
	for i := range mutants {
		if mutants[i].ID == mutantID {
			mutants[i].Rated = true
		}
	}

	s.Mutants = mutants

	if s.Selected != nil && s.Selected.ID == mutantID {
		selected := *s.Selected
		selected.Rated = true
		s.Selected = &selected
	}

	return s
}

// SessionStore is the process-wide container of the review session. Every
// operation is one atomic transition; subscribers see each completed state.
type SessionStore struct {
	mu          sync.RWMutex
	state       SessionState
	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func(SessionState)
}

// NewSessionStore creates a store with no project, no mutants and no selection.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// Subscribe registers fn to be called after every transition and returns a
// function that removes it. Subscribers are notified in registration order.
func (s *SessionStore) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *SessionStore) apply(action string, reduce func(SessionState) SessionState) {
	s.mu.Lock()
	s.state = reduce(s.state)
	next := s.state.clone()

	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	slog.Debug("session transition", "action", action, "project_id", next.ProjectID, "mutants", len(next.Mutants), "selected", next.SelectedID())

	for _, sub := range subscribers {
		sub.fn(next.clone())
	}
}

// SetProjectID records the active project.
func (s *SessionStore) SetProjectID(id int) {
	s.apply("set_project_id", func(st SessionState) SessionState { return reduceSetProjectID(st, id) })
}

// EnterProject switches to project id and clears the list and the selection in one step.
func (s *SessionStore) EnterProject(id int) {
	s.apply("enter_project", func(st SessionState) SessionState { return reduceEnterProject(st, id) })
}

// SetMutants replaces the list. The selection is left alone.
func (s *SessionStore) SetMutants(mutants []m.MutantOverview) {
	s.apply("set_mutants", func(st SessionState) SessionState { return reduceSetMutants(st, mutants) })
}

// SetSelectedMutant sets the selection exactly as given; nil clears it.
func (s *SessionStore) SetSelectedMutant(mutant *m.MutantOverview) {
	s.apply("set_selected", func(st SessionState) SessionState { return reduceSetSelected(st, mutant) })
}

// SetIsLoading sets the loading hint.
func (s *SessionStore) SetIsLoading(loading bool) {
	s.apply("set_is_loading", func(st SessionState) SessionState { return reduceSetIsLoading(st, loading) })
}

// MarkMutantAsRated flags the mutant as rated in the list and, if it is the
// selection, in the selection too.
func (s *SessionStore) MarkMutantAsRated(mutantID int) {
	s.apply("mark_rated", func(st SessionState) SessionState { return reduceMarkRated(st, mutantID) })
}
