package review

import "github.com/PSE-TRIAGE/triage/pkg"

// Cache keys of the review server resources.
var (
	projectsKey   = pkg.NewKey("projects")
	mutantsPrefix = pkg.NewKey("mutants")
)

// ProjectsKey is the key of the project list.
func ProjectsKey() pkg.Key { return projectsKey }

// MutantsKey is the key of a project's mutant list.
func MutantsKey(projectID int) pkg.Key { return pkg.NewKey(mutantsPrefix, projectID) }

// MutantDetailKey is the key of one mutant's detail.
func MutantDetailKey(mutantID int) pkg.Key { return pkg.NewKey(mutantsPrefix, "detail", mutantID) }

// MutantSourceKey is the key of one mutant's source file.
func MutantSourceKey(mutantID int) pkg.Key { return pkg.NewKey(mutantsPrefix, "source", mutantID) }

// RatingKey is the key of the reviewer's rating of a mutant.
func RatingKey(mutantID int) pkg.Key { return pkg.NewKey("ratings", mutantID) }

// FormFieldsKey is the key of a project's review form.
func FormFieldsKey(projectID int) pkg.Key { return pkg.NewKey("formFields", projectID) }

// AlgorithmsKey is the key of the ranking algorithm list.
func AlgorithmsKey() pkg.Key { return pkg.NewKey("algorithms") }
