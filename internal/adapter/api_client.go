// Package adapter provides the typed gateway to the review API and the local credential store.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is used when no API location is configured.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 8 << 20
)

// APIClient performs authenticated JSON requests against the review API.
type APIClient interface {
	// Get decodes the response of a GET request into out.
	Get(ctx context.Context, endpoint string, out any) error
	// Post sends body as JSON and decodes the response into out. Either may be nil.
	Post(ctx context.Context, endpoint string, body, out any) error
	// BaseURL returns the API location requests are sent to.
	BaseURL() string
}

// ClientOption configures an APIClient.
type ClientOption func(*httpAPIClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *httpAPIClient) {
		c.http = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *httpAPIClient) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithUnauthorizedHandler registers a hook fired after a 401 cleared the token.
func WithUnauthorizedHandler(fn func()) ClientOption {
	return func(c *httpAPIClient) {
		c.onUnauthorized = fn
	}
}

type httpAPIClient struct {
	baseURL        string
	tokens         TokenStore
	http           *http.Client
	onUnauthorized func()
}

// NewAPIClient creates an APIClient for baseURL that authenticates with tokens.
func NewAPIClient(baseURL string, tokens TokenStore, opts ...ClientOption) APIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	c := &httpAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *httpAPIClient) BaseURL() string { return c.baseURL }

func (c *httpAPIClient) Get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *httpAPIClient) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *httpAPIClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		slog.Error("api request failed", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)

		return &APIError{Method: method, Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &APIError{Method: method, Endpoint: endpoint, Cause: fmt.Errorf("read body: %w", err)}
	}

	slog.Debug("api request",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failure(method, endpoint, resp, data)
	}

	if out == nil {
		return nil
	}

	decodeErr := func(cause error) error {
		slog.Error("api response rejected", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "error", cause)

		return &DecodeError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Cause:      cause,
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return decodeErr(errEmptyBody)
	}

	if contentType := resp.Header.Get("Content-Type"); !isJSON(contentType) {
		return decodeErr(fmt.Errorf("unexpected content type %q", contentType))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return decodeErr(err)
	}

	if err := checkShape(out); err != nil {
		return decodeErr(err)
	}

	return nil
}

func (c *httpAPIClient) failure(method, endpoint string, resp *http.Response, data []byte) error {
	apiErr := &APIError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Detail:     errorDetail(data),
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				slog.Error("failed to clear token", "error", err)
			}
		}

		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	slog.Error("api request rejected", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)

	return apiErr
}

// errorDetail extracts the server's "detail" field, falling back to the raw body text.
func errorDetail(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(trimmed, &body); err != nil {
		return string(trimmed)
	}

	if len(body.Detail) == 0 {
		return string(trimmed)
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}

	return string(body.Detail)
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// IsRetryable reports whether err is a failure worth repeating.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	return false
}
