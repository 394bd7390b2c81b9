package adapter

import (
	"context"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// ReviewAPI is the typed surface of the review server used by the workstation.
// Every method returns model values; wire shapes never leave this package.
type ReviewAPI interface {
	// Login exchanges a username and password for a token and persists it.
	Login(ctx context.Context, username, password string) (m.Credentials, error)
	// Logout ends the server session and forgets the local token.
	Logout(ctx context.Context) error
	// CurrentUser returns the authenticated reviewer.
	CurrentUser(ctx context.Context) (m.User, error)

	// Projects lists the projects the reviewer is assigned to.
	Projects(ctx context.Context) ([]m.Project, error)
	// FormFields lists the review form of a project.
	FormFields(ctx context.Context, projectID int) ([]m.FormField, error)

	// Mutants lists a project's mutants in server order.
	Mutants(ctx context.Context, projectID int) ([]m.MutantOverview, error)
	// Mutant returns the full projection of one mutant.
	Mutant(ctx context.Context, mutantID int) (m.MutantDetail, error)
	// MutantSource returns the source file a mutant was generated from.
	MutantSource(ctx context.Context, mutantID int) (m.SourceCode, error)

	// Rating returns the reviewer's rating of a mutant, or nil when there is none.
	Rating(ctx context.Context, mutantID int) (*m.Rating, error)
	// SubmitRating creates or replaces the reviewer's rating of a mutant.
	SubmitRating(ctx context.Context, mutantID int, sub m.RatingSubmission) (m.Rating, error)

	// Algorithms lists the available ranking algorithms.
	Algorithms(ctx context.Context) ([]m.Algorithm, error)
	// ApplyAlgorithm re-ranks a project's mutants on the server.
	ApplyAlgorithm(ctx context.Context, projectID int, algorithmID string) (m.AlgorithmResult, error)
}

type reviewAPI struct {
	client APIClient
	tokens TokenStore
}

// NewReviewAPI creates a ReviewAPI on top of client. Successful logins are saved to tokens.
func NewReviewAPI(client APIClient, tokens TokenStore) ReviewAPI {
	return &reviewAPI{client: client, tokens: tokens}
}
