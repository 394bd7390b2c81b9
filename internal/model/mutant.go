// Package model defines the data structures shared by the review workstation.
package model

// MutantStatus is the terminal classification assigned by the mutation-testing run.
type MutantStatus string

const (
	// StatusKilled indicates a test detected the mutation.
	StatusKilled MutantStatus = "KILLED"
	// StatusSurvived indicates the mutation was executed but no test failed.
	StatusSurvived MutantStatus = "SURVIVED"
	// StatusNoCoverage indicates no test executed the mutated line.
	StatusNoCoverage MutantStatus = "NO_COVERAGE"
	// StatusNonViable indicates the mutated code could not be loaded.
	StatusNonViable MutantStatus = "NON_VIABLE"
	// StatusTimedOut indicates the test run exceeded its time budget.
	StatusTimedOut MutantStatus = "TIMED_OUT"
	// StatusMemoryError indicates the test run ran out of memory.
	StatusMemoryError MutantStatus = "MEMORY_ERROR"
	// StatusRunError indicates the test run failed for another reason.
	StatusRunError MutantStatus = "RUN_ERROR"
)

// MutantStatuses lists every valid status in display order.
var MutantStatuses = []MutantStatus{
	StatusKilled,
	StatusSurvived,
	StatusNoCoverage,
	StatusNonViable,
	StatusTimedOut,
	StatusMemoryError,
	StatusRunError,
}

// Valid reports whether s is one of the known statuses.
func (s MutantStatus) Valid() bool {
	for _, known := range MutantStatuses {
		if s == known {
			return true
		}
	}

	return false
}

// Label returns a short human-readable form of the status.
func (s MutantStatus) Label() string {
	switch s {
	case StatusKilled:
		return "killed"
	case StatusSurvived:
		return "survived"
	case StatusNoCoverage:
		return "no coverage"
	case StatusNonViable:
		return "non viable"
	case StatusTimedOut:
		return "timed out"
	case StatusMemoryError:
		return "memory error"
	case StatusRunError:
		return "run error"
	}

	return "unknown"
}

// MutantOverview is the list projection of a mutant.
type MutantOverview struct {
	ID         int
	Status     MutantStatus
	Detected   bool
	SourceFile string
	LineNumber int
	Mutator    string
	Ranking    int
	Rated      bool
}

// MutantDetail is the full projection of a mutant, fetched lazily on selection.
type MutantDetail struct {
	ID                int
	ProjectID         int
	Status            MutantStatus
	Detected          bool
	NumberOfTestsRun  int
	SourceFile        string
	MutatedClass      string
	MutatedMethod     string
	MethodDescription string
	LineNumber        int
	Mutator           string
	KillingTest       *string
	Description       string
	Ranking           int
	AdditionalFields  *string
}

// SourceCode is the source file a mutant was generated from.
type SourceCode struct {
	ProjectID          int
	FullyQualifiedName string
	Content            *string
	Found              bool
}
