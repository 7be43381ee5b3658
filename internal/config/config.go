// Package config loads and persists folioChat configuration.
// The YAML config file lives at ~/.folio/config.yaml and can be
// overridden per-setting with FOLIO_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all folioChat configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Backend server
	Server ServerConfig `yaml:"server"`

	// Chat session behavior
	Chat ChatConfig `yaml:"chat"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the portfolio backend connection.
type ServerConfig struct {
	BaseURL       string `yaml:"base_url"`
	SendTimeout   string `yaml:"send_timeout"`   // Client-side deadline on a chat request
	LookupTimeout string `yaml:"lookup_timeout"` // Deadline on the startup portfolio lookup
}

// ChatConfig configures the session engine and reveal pacing.
type ChatConfig struct {
	RevealInterval     string   `yaml:"reveal_interval"` // Delay between reveal ticks
	RevealChunk        int      `yaml:"reveal_chunk"`    // Characters revealed per tick
	VisitorName        string   `yaml:"visitor_name"`
	SuggestedQuestions []string `yaml:"suggested_questions"`
	Theme              string   `yaml:"theme"` // "dark" or "light"; empty follows the user prefs file
}

// LoggingConfig configures the zap CLI logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "folioChat",
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:       "http://localhost:8000",
			SendTimeout:   "30s",
			LookupTimeout: "10s",
		},

		Chat: ChatConfig{
			RevealInterval: "30ms",
			RevealChunk:    2,
			SuggestedQuestions: []string{
				"What are your main technical skills?",
				"Tell me about your recent projects.",
				"What kind of roles are you looking for?",
			},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "folio.log",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults still honor environment overrides
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
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
	if url := os.Getenv("FOLIO_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if timeout := os.Getenv("FOLIO_SEND_TIMEOUT"); timeout != "" {
		c.Server.SendTimeout = timeout
	}
	if name := os.Getenv("FOLIO_VISITOR_NAME"); name != "" {
		c.Chat.VisitorName = name
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetSendTimeout returns the chat send timeout as a duration.
func (c *Config) GetSendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.SendTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetLookupTimeout returns the portfolio lookup timeout as a duration.
func (c *Config) GetLookupTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.LookupTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetRevealInterval returns the reveal tick interval as a duration.
func (c *Config) GetRevealInterval() time.Duration {
	d, err := time.ParseDuration(c.Chat.RevealInterval)
	if err != nil {
		return 30 * time.Millisecond
	}
	return d
}

// GetRevealChunk returns the number of characters revealed per tick.
func (c *Config) GetRevealChunk() int {
	if c.Chat.RevealChunk < 1 {
		return 2
	}
	return c.Chat.RevealChunk
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL not configured (set FOLIO_SERVER_URL or server.base_url)")
	}

	if _, err := time.ParseDuration(c.Server.SendTimeout); err != nil {
		return fmt.Errorf("invalid send timeout %q: %w", c.Server.SendTimeout, err)
	}

	if _, err := time.ParseDuration(c.Chat.RevealInterval); err != nil {
		return fmt.Errorf("invalid reveal interval %q: %w", c.Chat.RevealInterval, err)
	}

	return nil
}
