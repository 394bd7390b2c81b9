package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "triage", configBaseName)
	assert.Equal(t, "triage.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "api.base_url", apiBaseURLKey)
	assert.Equal(t, "auth.credentials_file", credentialsFileKey)
	assert.Equal(t, "review.filter", reviewFilterKey)
	assert.Equal(t, "unreviewed", defaultReviewFilter)
	assert.Equal(t, "TRIAGE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"mixed case", " INFO ", slog.LevelInfo},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"numeric", "-4", slog.LevelDebug},
		{"unknown uses default", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"home only", "~", home},
		{"below home", "~/.triage/credentials.yaml", filepath.Join(home, ".triage", "credentials.yaml")},
		{"absolute", "/etc/triage.yaml", "/etc/triage.yaml"},
		{"relative", "creds.yaml", "creds.yaml"},
		{"tilde user form is kept", "~alice/creds.yaml", "~alice/creds.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandHome(tt.path))
		})
	}
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "triage.log")
	configureLogger(logPath, true)

	slog.Debug("debug line", "key", "value")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "msg=\"debug line\"")
	assert.Contains(t, string(contents), "key=value")
}
