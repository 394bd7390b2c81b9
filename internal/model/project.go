package model

// Project is a mutation-testing run imported for review.
type Project struct {
	ID              int
	Name            string
	CreatedAt       string
	TotalMutants    int
	ReviewedMutants int
	CurrentStatus   string
}

// Progress returns the reviewed share of the project's mutants in the range [0, 1].
func (p Project) Progress() float64 {
	if p.TotalMutants == 0 {
		return 0
	}

	return float64(p.ReviewedMutants) / float64(p.TotalMutants)
}

// User is the authenticated reviewer.
type User struct {
	ID              int
	Username        string
	IsAdmin         bool
	IsActive        bool
	MutantsReviewed int
}

// Credentials is the locally persisted session.
type Credentials struct {
	Token    string
	Username string
	BaseURL  string
}

// Algorithm is a server-side ranking strategy.
type Algorithm struct {
	ID          string
	Name        string
	Description string
}

// AlgorithmResult reports the outcome of applying a ranking algorithm.
type AlgorithmResult struct {
	Success       bool
	AlgorithmName string
	MutantsRanked int
	Message       string
}
