package adapter

import (
	"context"
	"fmt"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func (a *reviewAPI) Mutants(ctx context.Context, projectID int) ([]m.MutantOverview, error) {
	var resp []mutantOverviewWire
	if err := a.client.Get(ctx, projectMutantsEndpoint(projectID), &resp); err != nil {
		return nil, fmt.Errorf("list mutants of project %d: %w", projectID, err)
	}

	mutants := make([]m.MutantOverview, 0, len(resp))
	for _, mw := range resp {
		mutants = append(mutants, mw.toModel())
	}

	return mutants, nil
}

func (a *reviewAPI) Mutant(ctx context.Context, mutantID int) (m.MutantDetail, error) {
	endpoint := mutantEndpoint(mutantID)

	var resp mutantDetailWire
	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return m.MutantDetail{}, fmt.Errorf("get mutant %d: %w", mutantID, err)
	}

	if resp.ID == nil {
		return m.MutantDetail{}, &DecodeError{Endpoint: endpoint, Cause: &ShapeError{Errors: []string{"empty body"}}}
	}

	return resp.toModel(), nil
}

func (a *reviewAPI) MutantSource(ctx context.Context, mutantID int) (m.SourceCode, error) {
	endpoint := mutantSourceEndpoint(mutantID)

	var resp sourceCodeWire
	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return m.SourceCode{}, fmt.Errorf("get source of mutant %d: %w", mutantID, err)
	}

	if resp.ProjectID == nil {
		return m.SourceCode{}, &DecodeError{Endpoint: endpoint, Cause: &ShapeError{Errors: []string{"empty body"}}}
	}

	return resp.toModel(), nil
}
