package adapter

import (
	"context"
	"fmt"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func (a *reviewAPI) Rating(ctx context.Context, mutantID int) (*m.Rating, error) {
	var resp *ratingWire
	if err := a.client.Get(ctx, mutantRatingsEndpoint(mutantID), &resp); err != nil {
		return nil, fmt.Errorf("get rating of mutant %d: %w", mutantID, err)
	}

	if resp == nil {
		return nil, nil
	}

	rating := resp.toModel()

	return &rating, nil
}

func (a *reviewAPI) SubmitRating(ctx context.Context, mutantID int, sub m.RatingSubmission) (m.Rating, error) {
	endpoint := mutantRatingsEndpoint(mutantID)

	var resp ratingWire
	if err := a.client.Post(ctx, endpoint, ratingCreateFromModel(sub), &resp); err != nil {
		return m.Rating{}, fmt.Errorf("submit rating of mutant %d: %w", mutantID, err)
	}

	if resp.ID == nil {
		return m.Rating{}, &DecodeError{Endpoint: endpoint, Cause: &ShapeError{Errors: []string{"empty body"}}}
	}

	return resp.toModel(), nil
}
