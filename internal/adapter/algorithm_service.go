package adapter

import (
	"context"
	"fmt"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func (a *reviewAPI) Algorithms(ctx context.Context) ([]m.Algorithm, error) {
	var resp algorithmListWire
	if err := a.client.Get(ctx, endpointAlgorithms, &resp); err != nil {
		return nil, fmt.Errorf("list algorithms: %w", err)
	}

	algorithms := make([]m.Algorithm, 0, len(resp.Algorithms))
	for _, aw := range resp.Algorithms {
		algorithms = append(algorithms, m.Algorithm{ID: aw.ID, Name: aw.Name, Description: *aw.Description})
	}

	return algorithms, nil
}

func (a *reviewAPI) ApplyAlgorithm(ctx context.Context, projectID int, algorithmID string) (m.AlgorithmResult, error) {
	req := applyAlgorithmRequest{Algorithm: algorithmID}
	if err := shapeError(validate.Struct(req)); err != nil {
		return m.AlgorithmResult{}, fmt.Errorf("invalid algorithm request: %w", err)
	}

	endpoint := projectAlgorithmEndpoint(projectID)

	var resp applyAlgorithmWire
	if err := a.client.Post(ctx, endpoint, req, &resp); err != nil {
		return m.AlgorithmResult{}, fmt.Errorf("apply algorithm %q to project %d: %w", algorithmID, projectID, err)
	}

	if resp.Success == nil {
		return m.AlgorithmResult{}, &DecodeError{Endpoint: endpoint, Cause: &ShapeError{Errors: []string{"empty body"}}}
	}

	return resp.toModel(), nil
}
