package adapter

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func (a *reviewAPI) Projects(ctx context.Context) ([]m.Project, error) {
	var resp []projectWire
	if err := a.client.Get(ctx, endpointProjects, &resp); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]m.Project, 0, len(resp))
	for _, p := range resp {
		projects = append(projects, p.toModel())
	}

	return projects, nil
}

func (a *reviewAPI) FormFields(ctx context.Context, projectID int) ([]m.FormField, error) {
	endpoint := projectFormFieldsEndpoint(projectID)

	var resp []formFieldWire
	if err := a.client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("list form fields of project %d: %w", projectID, err)
	}

	fields := make([]m.FormField, 0, len(resp))
	for _, f := range resp {
		fields = append(fields, f.toModel())
	}

	slices.SortStableFunc(fields, func(x, y m.FormField) int {
		return cmp.Or(cmp.Compare(x.Position, y.Position), cmp.Compare(x.ID, y.ID))
	})

	return fields, nil
}
