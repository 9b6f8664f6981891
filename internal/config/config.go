package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace state directory.
const DirName = ".storyline"

// Config holds all storyline configuration.
type Config struct {
	// Remote Story API
	API APIConfig `yaml:"api"`

	// Local session persistence
	Session SessionConfig `yaml:"session"`

	// Story list defaults
	Stories StoriesConfig `yaml:"stories"`

	// Push subscription pass-through
	Push PushConfig `yaml:"push"`

	// Interactive shell
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote Story API client.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"` // "0" disables the per-request timeout
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig configures where the session store lives.
type SessionConfig struct {
	// DatabasePath is relative to the workspace unless absolute.
	DatabasePath string `yaml:"database_path"`
}

// StoriesConfig holds the defaults for the story list.
type StoriesConfig struct {
	PageSize     int  `yaml:"page_size"`
	WithLocation bool `yaml:"with_location"`
}

// PushConfig points at a Web Push subscription JSON produced by a push service.
type PushConfig struct {
	SubscriptionFile string `yaml:"subscription_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://story-api.dicoding.dev/v1",
			Timeout:   "60s",
			UserAgent: "storyline/1.0",
		},
		Session: SessionConfig{
			DatabasePath: filepath.Join(DirName, "session.db"),
		},
		Stories: StoriesConfig{
			PageSize:     10,
			WithLocation: false,
		},
		Push: PushConfig{
			SubscriptionFile: filepath.Join(DirName, "push_subscription.json"),
		},
		UI: DefaultUIConfig(),
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// DefaultPath returns the config path for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// Load loads configuration from a YAML file, then applies .env and
// environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadDotEnv loads <workspace>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STORYLINE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("STORYLINE_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("STORYLINE_DB"); v != "" {
		c.Session.DatabasePath = v
	}
	if v := os.Getenv("STORYLINE_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("STORYLINE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Stories.PageSize = n
		}
	}
	if v := os.Getenv("STORYLINE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// GetAPITimeout returns the per-request timeout. Zero means no timeout.
func (c *Config) GetAPITimeout() time.Duration {
	if c.API.Timeout == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ResolvePath makes a config-relative path absolute against the workspace.
func ResolvePath(workspace, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workspace, p)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set STORYLINE_API_URL)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if c.API.Timeout != "" && c.API.Timeout != "0" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
		}
	}
	if c.Stories.PageSize < 1 {
		return fmt.Errorf("stories.page_size must be positive, got %d", c.Stories.PageSize)
	}
	switch c.UI.Theme {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid ui.theme: %s (valid: auto, light, dark)", c.UI.Theme)
	}
	if c.Session.DatabasePath == "" {
		return fmt.Errorf("session.database_path is required")
	}
	return nil
}
