package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// TokenStore holds the bearer token of the current session.
type TokenStore interface {
	// Token returns the stored token or an empty string.
	Token() string
	// Load returns the persisted credentials.
	Load() (m.Credentials, error)
	// Save persists credentials, replacing any previous ones.
	Save(creds m.Credentials) error
	// Clear removes the stored token.
	Clear() error
}

type credentialsFile struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// FileTokenStore persists credentials as a yaml file readable only by the owner.
type FileTokenStore struct {
	path string

	mu     sync.RWMutex
	loaded bool
	creds  m.Credentials
}

// NewFileTokenStore creates a token store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Token returns the stored token, reading the file on first use.
func (s *FileTokenStore) Token() string {
	creds, err := s.Load()
	if err != nil {
		slog.Debug("credentials unavailable", "path", s.path, "error", err)
		return ""
	}

	return creds.Token
}

// Load returns the persisted credentials. A missing file yields empty credentials.
func (s *FileTokenStore) Load() (m.Credentials, error) {
	s.mu.RLock()
	if s.loaded {
		creds := s.creds
		s.mu.RUnlock()

		return creds, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		s.creds = m.Credentials{}

		return s.creds, nil
	}

	if err != nil {
		return m.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return m.Credentials{}, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}

	s.loaded = true
	s.creds = m.Credentials{Token: file.Token, Username: file.Username, BaseURL: file.BaseURL}

	return s.creds, nil
}

// Save writes credentials to disk.
func (s *FileTokenStore) Save(creds m.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := yaml.Marshal(credentialsFile{Token: creds.Token, Username: creds.Username, BaseURL: creds.BaseURL})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	s.loaded = true
	s.creds = creds

	return nil
}

// Clear deletes the credentials file.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	s.creds = m.Credentials{}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}

	return nil
}
