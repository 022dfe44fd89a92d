// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or the environment.
type Config struct {
	// Collaborator endpoints
	DatabaseURL    string `json:"database_url,omitempty" validate:"omitempty,uri"`
	TranscribeURL  string `json:"transcribe_url,omitempty" validate:"omitempty,url"`
	NotifyURL      string `json:"notify_url,omitempty" validate:"omitempty,url"`
	StorageDir     string `json:"storage_dir,omitempty"`
	TranscribeKey  string `json:"transcribe_key,omitempty"`
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=600"`

	// Retry policy
	MaxAttempts int `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// validate is shared; validator instances are safe for concurrent use.
var validate = validator.New()

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
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

// FromEnv fills a config from environment variables. Values already set (for
// example from a config file) win over the environment.
func (c *Config) FromEnv() {
	setIfEmpty(&c.DatabaseURL, "DATABASE_URL")
	setIfEmpty(&c.TranscribeURL, "TRANSCRIBE_URL")
	setIfEmpty(&c.TranscribeKey, "TRANSCRIBE_API_KEY")
	setIfEmpty(&c.NotifyURL, "NOTIFY_URL")
	setIfEmpty(&c.StorageDir, "STORAGE_DIR")
	setIfEmpty(&c.GeminiAPIKey, "GEMINI_API_KEY")
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// Validate checks field shapes and required collaborator settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config error: field %s failed %q validation", e.Field(), e.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database_url is required")
	}
	if c.TranscribeURL == "" {
		return fmt.Errorf("config error: transcribe_url is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: gemini_api_key is required")
	}
	return nil
}

// Timeout returns the per-call external timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
