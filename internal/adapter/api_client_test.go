package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

func newTestTokenStore(t *testing.T, token string) *FileTokenStore {
	t.Helper()

	store := NewFileTokenStore(filepath.Join(t.TempDir(), "credentials.yaml"))
	if token != "" {
		require.NoError(t, store.Save(m.Credentials{Token: token}))
	}

	return store
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClient_Get_SendsBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string

	r := chi.NewRouter()
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotRequestID = req.Header.Get(requestIDHeader)
		writeJSON(w, http.StatusOK, map[string]string{"token": "pong"})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewAPIClient(srv.URL, newTestTokenStore(t, "secret"))

	var out loginResponse
	require.NoError(t, client.Get(context.Background(), "/ping", &out))

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "pong", out.Token)
}

func TestAPIClient_Get_NoTokenNoAuthorizationHeader(t *testing.T) {
	var gotAuth string

	r := chi.NewRouter()
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewAPIClient(srv.URL, newTestTokenStore(t, ""))
	require.NoError(t, client.Get(context.Background(), "/ping", nil))
	assert.Empty(t, gotAuth)
}

func TestAPIClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		sentinel   error
		wantDetail string
		temporary  bool
	}{
		{"not found with string detail", http.StatusNotFound, `{"detail":"Mutant not found"}`, ErrNotFound, "Mutant not found", false},
		{"conflict", http.StatusConflict, `{"detail":"already rated"}`, ErrConflict, "already rated", false},
		{"validation detail object", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"],"msg":"bad"}]}`, nil, `[{"loc":["body"],"msg":"bad"}]`, false},
		{"plain text server error", http.StatusInternalServerError, "boom", nil, "boom", true},
		{"empty bad gateway", http.StatusBadGateway, "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/x", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			srv := httptest.NewServer(r)
			defer srv.Close()

			client := NewAPIClient(srv.URL, newTestTokenStore(t, "tok"))
			err := client.Get(context.Background(), "/x", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.temporary, IsRetryable(err))

			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}

			assert.NotErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAPIClient_Unauthorized_ClearsTokenAndFiresHook(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/user", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	store := newTestTokenStore(t, "expired")
	fired := 0
	client := NewAPIClient(srv.URL, store, WithUnauthorizedHandler(func() { fired++ }))

	err := client.Get(context.Background(), "/user", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, fired)
	assert.Empty(t, store.Token())
}

func TestAPIClient_TransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewAPIClient(url, nil, WithTimeout(time.Second))
	err := client.Get(context.Background(), "/projects", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsRetryable(err))
}

func TestAPIClient_CanceledContextIsNotWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewAPIClient(srv.URL, nil)
	err := client.Get(ctx, "/projects", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRetryable(err))
}

func TestAPIClient_BodylessSuccessIsDecodeError(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"html maintenance page", "text/html", "<html>maintenance</html>"},
		{"empty json body", "application/json", ""},
		{"no content type", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/projects", func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}

				_, _ = w.Write([]byte(tt.body))
			})

			srv := httptest.NewServer(r)
			defer srv.Close()

			var out []projectWire
			err := NewAPIClient(srv.URL, nil).Get(context.Background(), "/projects", &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, http.StatusOK, decodeErr.StatusCode)
			assert.Equal(t, "OK", decodeErr.Status)
			assert.Contains(t, decodeErr.Error(), "200 OK")
			assert.Nil(t, out)
		})
	}
}

func TestAPIClient_NilOutIgnoresBody(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/user/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("bye"))
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewAPIClient(srv.URL, nil)
	require.NoError(t, client.Post(context.Background(), "/user/logout", nil, nil))
}

func TestAPIClient_MalformedJSONIsDecodeError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/projects", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":`))
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	var out []projectWire
	err := NewAPIClient(srv.URL, nil).Get(context.Background(), "/projects", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.False(t, IsRetryable(err))
}

func TestNewAPIClient_DefaultBaseURL(t *testing.T) {
	client := NewAPIClient("  ", nil)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())

	client = NewAPIClient("http://example.test/api/", nil)
	assert.Equal(t, "http://example.test/api", client.BaseURL())
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", ""},
		{"string detail", `{"detail":"nope"}`, "nope"},
		{"no detail key", `{"message":"x"}`, `{"message":"x"}`},
		{"not json", "gateway down", "gateway down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorDetail([]byte(tt.body)))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Method: "GET", Endpoint: "/x", StatusCode: 404, Status: "Not Found", Detail: "gone"}
	assert.Equal(t, "GET /x: 404 Not Found: gone", err.Error())

	transport := &APIError{Method: "GET", Endpoint: "/x", Cause: errors.New("refused")}
	assert.Equal(t, "GET /x: refused", transport.Error())
}
