// Package config loads wallgen settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every wallgen command.
type Config struct {
	// APIKey is the fallback key used when none is stored. It is only read
	// from the environment, never from the config file.
	APIKey string `yaml:"-"`

	Model string `yaml:"model"`
	Size  string `yaml:"size"`

	// StorePath is the kvstore file the API key is saved in.
	StorePath string `yaml:"store"`
	// OutputDir is where downloaded wallpapers are written.
	OutputDir string `yaml:"output"`

	Timeout        time.Duration `yaml:"timeout"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// BaseURL points the Gemini client at a proxy or another endpoint.
	BaseURL string `yaml:"base_url"`

	// Zero disables client-side limiting unless PublishedRateLimits is set.
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	TokensPerMinute   int  `yaml:"tokens_per_minute"`
	SmoothRateLimit   bool `yaml:"smooth_rate_limit"`
	// PublishedRateLimits sizes the limiter from the model's published
	// limits. Explicit per-minute values still win.
	PublishedRateLimits bool `yaml:"published_rate_limits"`

	// SafetyThreshold applies one blocking threshold to every harm category,
	// e.g. BLOCK_ONLY_HIGH. Empty leaves the model's defaults.
	SafetyThreshold string `yaml:"safety_threshold"`

	LogLevel string `yaml:"log_level"`
}

// Default values.
const (
	DefaultModel     = "nano-banana-1"
	DefaultOutputDir = "wallpapers"
	DefaultTimeout   = 2 * time.Minute
	DefaultLogLevel  = "info"
)

// DefaultPath returns the config file location under the user's config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wallgen", "config.yaml"), nil
}

// Load reads path (a missing file is fine), loads envFiles into the process
// environment without overriding variables already set, applies environment
// overrides and fills defaults.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	// GEMINI_API_KEY wins over the generic API_KEY.
	for _, name := range []string{"API_KEY", "GEMINI_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			c.APIKey = v
		}
	}

	overrides := map[string]*string{
		"WALLGEN_MODEL":     &c.Model,
		"WALLGEN_STORE":     &c.StorePath,
		"WALLGEN_OUTPUT":    &c.OutputDir,
		"WALLGEN_LOG_LEVEL": &c.LogLevel,
		"WALLGEN_BASE_URL":  &c.BaseURL,
	}
	for name, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() error {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.StorePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locating store: %w", err)
		}
		c.StorePath = filepath.Join(dir, "wallgen", "store.yaml")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
