// Package domain implements the review workflows behind every triage command.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/PSE-TRIAGE/triage/internal/adapter"
	"github.com/PSE-TRIAGE/triage/internal/controller"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

// LoginArgs contains the credentials for a login.
type LoginArgs struct {
	Username string
	Password string
}

// ListArgs selects the mutants to list.
type ListArgs struct {
	ProjectID int
	Filter    review.FilterMode
}

// ReviewArgs configures an interactive review session.
type ReviewArgs struct {
	ProjectID int
	Filter    review.FilterMode
}

// RateArgs contains a non-interactive rating.
// ProjectID may be 0, in which case it is taken from the mutant.
// Values maps form field ids to raw user input; fields not listed keep
// the answer of the existing rating.
type RateArgs struct {
	ProjectID int
	MutantID  int
	Values    map[int]string
}

// RankArgs selects the ranking algorithm to apply to a project.
type RankArgs struct {
	ProjectID   int
	AlgorithmID string
}

// FieldsArgs selects the project whose review form is shown.
type FieldsArgs struct {
	ProjectID int
}

// Workflow defines the operations the CLI exposes.
type Workflow interface {
	Login(ctx context.Context, args LoginArgs) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Projects(ctx context.Context) error
	Mutants(ctx context.Context, args ListArgs) error
	Review(ctx context.Context, args ReviewArgs) error
	Rate(ctx context.Context, args RateArgs) error
	Algorithms(ctx context.Context) error
	Rank(ctx context.Context, args RankArgs) error
	Fields(ctx context.Context, args FieldsArgs) error
}

type workflow struct {
	adapter.ReviewAPI
	review.Reviewer
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(api adapter.ReviewAPI, reviewer review.Reviewer, ui controller.UI) Workflow {
	return &workflow{
		ReviewAPI: api,
		Reviewer:  reviewer,
		UI:        ui,
	}
}

func (w *workflow) Login(ctx context.Context, args LoginArgs) error {
	creds, err := w.ReviewAPI.Login(ctx, args.Username, args.Password)
	if err != nil {
		slog.Error("Failed to log in", "username", args.Username, "error", err)
		return fmt.Errorf("login: %w", err)
	}

	return w.DisplayCredentials(ctx, creds)
}

func (w *workflow) Logout(ctx context.Context) error {
	if err := w.ReviewAPI.Logout(ctx); err != nil {
		slog.Error("Failed to end server session", "error", err)
		w.DisplayMessage(ctx, "Local credentials removed; the server session could not be ended.")

		return nil
	}

	w.DisplayMessage(ctx, "Logged out.")

	return nil
}

func (w *workflow) Whoami(ctx context.Context) error {
	user, err := w.CurrentUser(ctx)
	if err != nil {
		slog.Error("Failed to load current user", "error", err)
		return fmt.Errorf("load current user: %w", err)
	}

	return w.DisplayUser(ctx, user)
}

func (w *workflow) Projects(ctx context.Context) error {
	projects, err := w.Reviewer.Projects(ctx)
	if err != nil {
		slog.Error("Failed to list projects", "error", err)
		return fmt.Errorf("list projects: %w", err)
	}

	return w.DisplayProjects(ctx, projects)
}

func (w *workflow) Mutants(ctx context.Context, args ListArgs) error {
	data, err := w.Enter(ctx, args.ProjectID)
	if err != nil {
		slog.Error("Failed to load project", "project_id", args.ProjectID, "error", err)
		return err
	}

	return w.DisplayMutants(ctx, data.Mutants, args.Filter)
}

func (w *workflow) Review(ctx context.Context, args ReviewArgs) error {
	if _, err := w.Enter(ctx, args.ProjectID); err != nil {
		slog.Error("Failed to load project", "project_id", args.ProjectID, "error", err)
		return err
	}

	if err := w.UI.Review(ctx, w.Reviewer, controller.WithFilter(args.Filter)); err != nil {
		slog.Error("Review session failed", "project_id", args.ProjectID, "error", err)
		return err
	}

	return nil
}

// Rate seeds a form from the stored rating, overlays args.Values and submits it.
func (w *workflow) Rate(ctx context.Context, args RateArgs) error {
	projectID := args.ProjectID
	if projectID == 0 {
		detail, err := w.Mutant(ctx, args.MutantID)
		if err != nil {
			slog.Error("Failed to load mutant", "mutant_id", args.MutantID, "error", err)
			return fmt.Errorf("resolve project of mutant %d: %w", args.MutantID, err)
		}

		projectID = detail.ProjectID
	}

	data, err := w.Enter(ctx, projectID)
	if err != nil {
		slog.Error("Failed to load project", "project_id", projectID, "error", err)
		return err
	}

	if !w.Select(args.MutantID) {
		return fmt.Errorf("mutant %d is not part of project %d", args.MutantID, projectID)
	}

	existing, err := w.Reviewer.Rating(ctx, args.MutantID)
	if err != nil {
		slog.Error("Failed to load rating", "mutant_id", args.MutantID, "error", err)
		return fmt.Errorf("load rating of mutant %d: %w", args.MutantID, err)
	}

	form := review.NewReviewForm()
	form.Sync(data.Fields, w.Store().Snapshot().Selected, existing)

	ids := make([]int, 0, len(args.Values))
	for id := range args.Values {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	for _, id := range ids {
		if err := form.SetInput(id, args.Values[id]); err != nil {
			return err
		}
	}

	rating, err := w.Submit(ctx, args.MutantID, form)
	if err != nil {
		slog.Error("Failed to submit rating", "mutant_id", args.MutantID, "error", err)
		return err
	}

	return w.DisplayRating(ctx, data.Fields, rating)
}

func (w *workflow) Algorithms(ctx context.Context) error {
	algorithms, err := w.Reviewer.Algorithms(ctx)
	if err != nil {
		slog.Error("Failed to list algorithms", "error", err)
		return fmt.Errorf("list algorithms: %w", err)
	}

	return w.DisplayAlgorithms(ctx, algorithms)
}

func (w *workflow) Rank(ctx context.Context, args RankArgs) error {
	if _, err := w.Enter(ctx, args.ProjectID); err != nil {
		slog.Error("Failed to load project", "project_id", args.ProjectID, "error", err)
		return err
	}

	result, err := w.Reviewer.ApplyAlgorithm(ctx, args.AlgorithmID)
	if err != nil {
		slog.Error("Failed to apply algorithm", "project_id", args.ProjectID, "algorithm", args.AlgorithmID, "error", err)
		return fmt.Errorf("apply algorithm %q: %w", args.AlgorithmID, err)
	}

	return w.DisplayAlgorithmResult(ctx, result)
}

func (w *workflow) Fields(ctx context.Context, args FieldsArgs) error {
	fields, err := w.Reviewer.FormFields(ctx, args.ProjectID)
	if err != nil {
		slog.Error("Failed to load form fields", "project_id", args.ProjectID, "error", err)
		return fmt.Errorf("load form of project %d: %w", args.ProjectID, err)
	}

	return w.DisplayFormFields(ctx, fields)
}
