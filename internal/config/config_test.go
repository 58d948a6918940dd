package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Addr)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
	assert.Equal(t, DefaultBodyLimit, cfg.BodyLimit)
	assert.Equal(t, DefaultMaxFiles, cfg.MaxFiles)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Dev)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitdrop.yaml")
	content := `
addr: ":9090"
github_api_url: "https://ghe.example.com/api/v3"
max_files: 8
allowed_extensions:
  - .md
blocked_names:
  - secrets.txt
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHubAPIURL)
	assert.Equal(t, 8, cfg.MaxFiles)
	assert.Equal(t, []string{".md"}, cfg.AllowedExts)
	assert.Equal(t, []string{"secrets.txt"}, cfg.BlockedNames)
	assert.Equal(t, "debug", cfg.LogLevel)
	// File does not touch the body limit, default stays
	assert.Equal(t, DefaultBodyLimit, cfg.BodyLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitdrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\nmax_files: 8\n"), 0644))

	t.Setenv("GITDROP_ADDR", ":7070")
	t.Setenv("GITDROP_MAX_FILES", "4")
	t.Setenv("GITDROP_LOG_LEVEL", "warn")
	t.Setenv("GITDROP_DEV", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 4, cfg.MaxFiles)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Dev)
}

func TestLoadRejectsBadLimits(t *testing.T) {
	t.Setenv("GITDROP_MAX_FILES", "0")
	_, err := Load("")
	assert.Error(t, err)
}
