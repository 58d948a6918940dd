package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultBodyLimit caps a whole multipart submission at 32MB
	DefaultBodyLimit = 32 * 1024 * 1024
	// DefaultMaxFiles caps the number of files in one batch
	DefaultMaxFiles = 64
)

// Config holds the server configuration. Precedence is defaults, then the
// YAML file, then environment variables.
type Config struct {
	Addr         string   `yaml:"addr"`
	GitHubAPIURL string   `yaml:"github_api_url"`
	BodyLimit    int      `yaml:"body_limit"`
	MaxFiles     int      `yaml:"max_files"`
	AllowedExts  []string `yaml:"allowed_extensions"`
	AllowedNames []string `yaml:"allowed_names"`
	BlockedNames []string `yaml:"blocked_names"`
	LogLevel     string   `yaml:"log_level"`
	Dev          bool     `yaml:"dev"`
}

// Load reads configuration from the optional YAML file at path and the
// environment. An empty path skips the file entirely; a missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:         ":8181",
		GitHubAPIURL: "https://api.github.com",
		BodyLimit:    DefaultBodyLimit,
		MaxFiles:     DefaultMaxFiles,
		LogLevel:     "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.MaxFiles <= 0 {
		return nil, fmt.Errorf("max_files must be positive, got %d", cfg.MaxFiles)
	}
	if cfg.BodyLimit <= 0 {
		return nil, fmt.Errorf("body_limit must be positive, got %d", cfg.BodyLimit)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GITDROP_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("GITDROP_GITHUB_API_URL"); v != "" {
		cfg.GitHubAPIURL = v
	}
	if v := os.Getenv("GITDROP_BODY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BodyLimit = n
		}
	}
	if v := os.Getenv("GITDROP_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFiles = n
		}
	}
	if v := os.Getenv("GITDROP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GITDROP_DEV"); v == "true" || v == "1" {
		cfg.Dev = true
	}
}
