package adapter

import (
	"context"
	"fmt"
	"log/slog"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func (a *reviewAPI) Login(ctx context.Context, username, password string) (m.Credentials, error) {
	req := loginRequest{Username: username, Password: password}
	if err := shapeError(validate.Struct(req)); err != nil {
		return m.Credentials{}, fmt.Errorf("invalid login: %w", err)
	}

	var resp loginResponse
	if err := a.client.Post(ctx, endpointLogin, req, &resp); err != nil {
		return m.Credentials{}, fmt.Errorf("login: %w", err)
	}

	if resp.Token == "" {
		return m.Credentials{}, &DecodeError{Endpoint: endpointLogin, Cause: &ShapeError{Errors: []string{"field 'token' is missing"}}}
	}

	creds := m.Credentials{Token: resp.Token, Username: username, BaseURL: a.client.BaseURL()}
	if err := a.tokens.Save(creds); err != nil {
		return m.Credentials{}, fmt.Errorf("store token: %w", err)
	}

	slog.Info("logged in", "username", username)

	return creds, nil
}

func (a *reviewAPI) Logout(ctx context.Context) error {
	err := a.client.Post(ctx, endpointLogout, nil, nil)

	if clearErr := a.tokens.Clear(); clearErr != nil {
		return fmt.Errorf("clear token: %w", clearErr)
	}

	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (a *reviewAPI) CurrentUser(ctx context.Context) (m.User, error) {
	var resp userWire
	if err := a.client.Get(ctx, endpointUser, &resp); err != nil {
		return m.User{}, fmt.Errorf("get current user: %w", err)
	}

	if resp.ID == nil {
		return m.User{}, &DecodeError{Endpoint: endpointUser, Cause: &ShapeError{Errors: []string{"empty body"}}}
	}

	return resp.toModel(), nil
}
