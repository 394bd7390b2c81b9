package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/PSE-TRIAGE/triage/internal/adapter"
	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/pkg"
)

// ErrNoProject is returned by operations that need an active project.
var ErrNoProject = errors.New("no project selected")

// ProjectData is what entering a project loads.
type ProjectData struct {
	Mutants []m.MutantOverview
	Fields  []m.FormField
}

// Inspection is everything shown for the selected mutant.
// SourceErr is set when the source could not be loaded; the rest is still usable.
type Inspection struct {
	MutantID  int
	Detail    m.MutantDetail
	Source    m.SourceCode
	SourceErr error
	Rating    *m.Rating
}

// Reviewer coordinates reads through the cache, the session store and submissions.
//
// Load* methods only touch the network and the cache and may run on any goroutine.
// Begin*, Apply* and Select write the session store and belong to the single
// goroutine that owns it. Enter and Refresh combine both for sequential callers.
type Reviewer interface {
	// Store returns the session store the reviewer writes to.
	Store() *SessionStore

	// Enter switches to projectID and loads its mutants and form.
	Enter(ctx context.Context, projectID int) (ProjectData, error)
	// BeginProject resets the session for projectID and raises the loading flag.
	BeginProject(projectID int)
	// LoadProject fetches the mutant list and the form fields concurrently.
	LoadProject(ctx context.Context, projectID int) (ProjectData, error)
	// ApplyProject stores loaded data unless projectID is no longer active.
	ApplyProject(projectID int, data ProjectData, err error) bool

	// Refresh re-reads the active project's mutant list through the cache.
	Refresh(ctx context.Context) error
	// LoadMutants fetches a project's mutant list through the cache.
	LoadMutants(ctx context.Context, projectID int) ([]m.MutantOverview, error)
	// ApplyMutants stores a list unless projectID is no longer active.
	ApplyMutants(projectID int, mutants []m.MutantOverview) bool

	// Select selects the listed mutant with id and reports whether it exists.
	Select(mutantID int) bool
	// Inspect loads detail, source and existing rating of a mutant concurrently.
	Inspect(ctx context.Context, mutantID int) (Inspection, error)

	// Submit validates form, sends it and records the result.
	Submit(ctx context.Context, mutantID int, form *ReviewForm) (m.Rating, error)
	// SendRating sends a submission and updates the cache; the store is untouched.
	SendRating(ctx context.Context, projectID, mutantID int, sub m.RatingSubmission) (m.Rating, error)
	// ConfirmRated marks the mutant rated in the session store.
	ConfirmRated(mutantID int)

	// Projects lists the reviewer's projects.
	Projects(ctx context.Context) ([]m.Project, error)
	// FormFields returns a project's review form in display order.
	FormFields(ctx context.Context, projectID int) ([]m.FormField, error)
	// Rating returns the reviewer's rating of a mutant.
	Rating(ctx context.Context, mutantID int) (*m.Rating, error)
	// Algorithms lists ranking algorithms.
	Algorithms(ctx context.Context) ([]m.Algorithm, error)
	// ApplyAlgorithm re-ranks the active project and reloads its list.
	ApplyAlgorithm(ctx context.Context, algorithmID string) (m.AlgorithmResult, error)
}

type reviewer struct {
	api   adapter.ReviewAPI
	cache *pkg.QueryCache
	store *SessionStore
}

// NewReviewer creates a Reviewer.
func NewReviewer(api adapter.ReviewAPI, cache *pkg.QueryCache, store *SessionStore) Reviewer {
	return &reviewer{api: api, cache: cache, store: store}
}

func (r *reviewer) Store() *SessionStore { return r.store }

func (r *reviewer) Enter(ctx context.Context, projectID int) (ProjectData, error) {
	r.BeginProject(projectID)

	data, err := r.LoadProject(ctx, projectID)
	r.ApplyProject(projectID, data, err)

	if err != nil {
		return ProjectData{}, err
	}

	return data, nil
}

func (r *reviewer) BeginProject(projectID int) {
	r.store.EnterProject(projectID)
	r.store.SetIsLoading(true)
}

func (r *reviewer) LoadProject(ctx context.Context, projectID int) (ProjectData, error) {
	var data ProjectData

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mutants, err := r.LoadMutants(gctx, projectID)
		data.Mutants = mutants

		return err
	})

	g.Go(func() error {
		fields, err := r.FormFields(gctx, projectID)
		data.Fields = fields

		return err
	})

	if err := g.Wait(); err != nil {
		return ProjectData{}, fmt.Errorf("load project %d: %w", projectID, err)
	}

	return data, nil
}

func (r *reviewer) ApplyProject(projectID int, data ProjectData, err error) bool {
	if r.store.Snapshot().ProjectID != projectID {
		slog.Debug("dropping load of inactive project", "project_id", projectID)
		return false
	}

	r.store.SetIsLoading(false)

	if err != nil {
		return false
	}

	return r.ApplyMutants(projectID, data.Mutants)
}

func (r *reviewer) Refresh(ctx context.Context) error {
	projectID := r.store.Snapshot().ProjectID
	if projectID == 0 {
		return ErrNoProject
	}

	mutants, err := r.LoadMutants(ctx, projectID)
	if err != nil {
		return err
	}

	r.ApplyMutants(projectID, mutants)

	return nil
}

func (r *reviewer) LoadMutants(ctx context.Context, projectID int) ([]m.MutantOverview, error) {
	mutants, err := pkg.Fetch(ctx, r.cache, MutantsKey(projectID), func(ctx context.Context) ([]m.MutantOverview, error) {
		return r.api.Mutants(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(mutants), nil
}

func (r *reviewer) ApplyMutants(projectID int, mutants []m.MutantOverview) bool {
	state := r.store.Snapshot()
	if state.ProjectID != projectID {
		slog.Debug("dropping mutant list of inactive project", "project_id", projectID, "active", state.ProjectID)
		return false
	}

	r.store.SetMutants(mutants)

	if state.Selected == nil && len(mutants) > 0 {
		first := mutants[0]
		r.store.SetSelectedMutant(&first)
	}

	return true
}

func (r *reviewer) Select(mutantID int) bool {
	state := r.store.Snapshot()

	idx := slices.IndexFunc(state.Mutants, func(mu m.MutantOverview) bool { return mu.ID == mutantID })
	if idx < 0 {
		return false
	}

	selected := state.Mutants[idx]
	r.store.SetSelectedMutant(&selected)

	return true
}

func (r *reviewer) Inspect(ctx context.Context, mutantID int) (Inspection, error) {
	insp := Inspection{MutantID: mutantID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail, err := pkg.Fetch(gctx, r.cache, MutantDetailKey(mutantID), func(ctx context.Context) (m.MutantDetail, error) {
			return r.api.Mutant(ctx, mutantID)
		})
		insp.Detail = detail

		return err
	})

	g.Go(func() error {
		source, err := pkg.Fetch(gctx, r.cache, MutantSourceKey(mutantID), func(ctx context.Context) (m.SourceCode, error) {
			return r.api.MutantSource(ctx, mutantID)
		})
		insp.Source, insp.SourceErr = source, err

		return nil
	})

	g.Go(func() error {
		rating, err := r.Rating(gctx, mutantID)
		insp.Rating = rating

		return err
	})

	if err := g.Wait(); err != nil {
		return Inspection{MutantID: mutantID}, fmt.Errorf("inspect mutant %d: %w", mutantID, err)
	}

	return insp, nil
}

func (r *reviewer) Submit(ctx context.Context, mutantID int, form *ReviewForm) (m.Rating, error) {
	if err := form.Validate(); err != nil {
		return m.Rating{}, err
	}

	projectID := r.store.Snapshot().ProjectID

	rating, err := r.SendRating(ctx, projectID, mutantID, form.Submission())
	if err != nil {
		return m.Rating{}, err
	}

	r.ConfirmRated(mutantID)

	return rating, nil
}

func (r *reviewer) SendRating(ctx context.Context, projectID, mutantID int, sub m.RatingSubmission) (m.Rating, error) {
	rating, err := r.api.SubmitRating(ctx, mutantID, sub)
	if err != nil {
		return m.Rating{}, err
	}

	stored := rating
	r.cache.SetData(RatingKey(mutantID), &stored)
	r.cache.Invalidate(RatingKey(mutantID))

	if projectID != 0 {
		pkg.UpdateData(r.cache, MutantsKey(projectID), func(list []m.MutantOverview) []m.MutantOverview {
			patched := slices.Clone(list)
			for i := range patched {
				if patched[i].ID == mutantID {
					patched[i].Rated = true
				}
			}

			return patched
		})
		r.cache.Invalidate(MutantsKey(projectID))
	}

	r.cache.Invalidate(ProjectsKey())

	slog.Info("rating submitted", "mutant_id", mutantID, "rating_id", rating.ID, "values", len(sub.FieldValues))

	return rating, nil
}

func (r *reviewer) ConfirmRated(mutantID int) {
	r.store.MarkMutantAsRated(mutantID)
}

func (r *reviewer) Projects(ctx context.Context) ([]m.Project, error) {
	return pkg.Fetch(ctx, r.cache, ProjectsKey(), r.api.Projects)
}

func (r *reviewer) FormFields(ctx context.Context, projectID int) ([]m.FormField, error) {
	fields, err := pkg.Fetch(ctx, r.cache, FormFieldsKey(projectID), func(ctx context.Context) ([]m.FormField, error) {
		return r.api.FormFields(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}

	return SortFields(fields), nil
}

func (r *reviewer) Rating(ctx context.Context, mutantID int) (*m.Rating, error) {
	rating, err := pkg.Fetch(ctx, r.cache, RatingKey(mutantID), func(ctx context.Context) (*m.Rating, error) {
		return r.api.Rating(ctx, mutantID)
	})
	if err != nil {
		return nil, err
	}

	return cloneRating(rating), nil
}

func (r *reviewer) Algorithms(ctx context.Context) ([]m.Algorithm, error) {
	return pkg.Fetch(ctx, r.cache, AlgorithmsKey(), r.api.Algorithms)
}

func (r *reviewer) ApplyAlgorithm(ctx context.Context, algorithmID string) (m.AlgorithmResult, error) {
	projectID := r.store.Snapshot().ProjectID
	if projectID == 0 {
		return m.AlgorithmResult{}, ErrNoProject
	}

	result, err := r.api.ApplyAlgorithm(ctx, projectID, algorithmID)
	if err != nil {
		return m.AlgorithmResult{}, err
	}

	r.cache.Invalidate(MutantsKey(projectID))
	r.cache.InvalidatePrefix(pkg.NewKey(mutantsPrefix, "detail"))

	if err := r.Refresh(ctx); err != nil {
		return result, fmt.Errorf("reload ranked mutants: %w", err)
	}

	return result, nil
}
