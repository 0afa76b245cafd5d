// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied where neither the config file, environment, nor flags
// provide a value.
const (
	DefaultAddr      = ":8080"
	DefaultOutputDir = "output"
)

// EnvAPIKey is the environment variable holding the Gemini credential.
const EnvAPIKey = "GEMINI_API_KEY"

// Config represents the application configuration. All fields are
// optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Addr is the HTTP listen address for serve mode.
	Addr string `json:"addr,omitempty"`
	// OutputDir receives optimized YAML artifacts and rendered PDFs.
	OutputDir string `json:"output_dir,omitempty"`
	// APIKey is the Gemini API key. Prefer the environment variable;
	// this exists for local development only.
	APIKey string `json:"api_key,omitempty"`
	// Model overrides the optimization model name.
	Model string `json:"model,omitempty"`
	// MaxTokens caps the optimization response; zero means the default.
	MaxTokens int32 `json:"max_tokens,omitempty"`
	// Verbose enables detailed progress output in CLI mode.
	Verbose bool `json:"verbose,omitempty"`

	// AllowedOrigins lists CORS origins for serve mode.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxTokens < 0 {
		return fmt.Errorf("config error: 'max_tokens' must be non-negative")
	}
	return nil
}

// ResolveAPIKey returns the credential to use: the environment wins over
// the config file. Empty means unconfigured; callers decide how hard that
// failure is.
func (c *Config) ResolveAPIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return c.APIKey
}

// MergeWithDefaults returns a copy with empty fields filled in from
// defaults, and the package defaults applied last.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.Addr == "" {
		result.Addr = DefaultAddr
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.OutputDir == "" {
		result.OutputDir = DefaultOutputDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	return result
}
