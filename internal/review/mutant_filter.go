package review

import (
	"fmt"
	"iter"
	"slices"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// FilterMode narrows the mutant list for display.
type FilterMode string

// Available filter modes, in the order they are cycled.
const (
	FilterAll        FilterMode = "all"
	FilterUnreviewed FilterMode = "unreviewed"
	FilterReviewed   FilterMode = "reviewed"
	FilterKilled     FilterMode = "killed"
	FilterSurvived   FilterMode = "survived"
	FilterNoCoverage FilterMode = "noCoverage"
)

// FilterModes lists every mode.
var FilterModes = []FilterMode{
	FilterAll,
	FilterUnreviewed,
	FilterReviewed,
	FilterKilled,
	FilterSurvived,
	FilterNoCoverage,
}

// ParseFilterMode converts a flag or config value into a FilterMode.
func ParseFilterMode(value string) (FilterMode, error) {
	mode := FilterMode(value)
	if slices.Contains(FilterModes, mode) {
		return mode, nil
	}

	return "", fmt.Errorf("unknown filter %q (want one of %v)", value, FilterModes)
}

// Matches reports whether mutant passes the filter.
func (f FilterMode) Matches(mutant m.MutantOverview) bool {
	switch f {
	case FilterUnreviewed:
		return !mutant.Rated
	case FilterReviewed:
		return mutant.Rated
	case FilterKilled:
		return mutant.Status == m.StatusKilled
	case FilterSurvived:
		return mutant.Status == m.StatusSurvived
	case FilterNoCoverage:
		return mutant.Status == m.StatusNoCoverage
	}

	return true
}

// Next returns the mode after f in cycling order.
func (f FilterMode) Next() FilterMode {
	idx := slices.Index(FilterModes, f)
	return FilterModes[(idx+1)%len(FilterModes)]
}

// Label is the display name of the mode.
func (f FilterMode) Label() string {
	switch f {
	case FilterAll:
		return "All Mutants"
	case FilterUnreviewed:
		return "Unreviewed"
	case FilterReviewed:
		return "Reviewed"
	case FilterKilled:
		return "Killed"
	case FilterSurvived:
		return "Survived"
	case FilterNoCoverage:
		return "No Coverage"
	}

	return string(f)
}

// EmptyMessage is shown when the filtered list is empty.
func (f FilterMode) EmptyMessage() string {
	switch f {
	case FilterUnreviewed:
		return "No unreviewed mutants left."
	case FilterReviewed:
		return "No reviewed mutants yet."
	}

	return "No mutants in this project."
}

// Filtered yields the mutants matching mode, in list order.
func Filtered(mutants []m.MutantOverview, mode FilterMode) iter.Seq[m.MutantOverview] {
	return func(yield func(m.MutantOverview) bool) {
		for _, mutant := range mutants {
			if !mode.Matches(mutant) {
				continue
			}

			if !yield(mutant) {
				return
			}
		}
	}
}

// FilterMutants collects Filtered into a new slice.
func FilterMutants(mutants []m.MutantOverview, mode FilterMode) []m.MutantOverview {
	return slices.Collect(Filtered(mutants, mode))
}
