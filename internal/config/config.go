package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the wadesk configuration shared by the terminal client and the
// mock API server
type Config struct {
	API       APIConfig       `yaml:"api"`
	State     StateConfig     `yaml:"state"`
	Chat      ChatConfig      `yaml:"chat"`
	Campaigns CampaignsConfig `yaml:"campaigns"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig selects the REST API the client talks to
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StateConfig contains local persisted state settings
type StateConfig struct {
	Path string `yaml:"path"`
}

// ChatConfig contains chat inbox settings
type ChatConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// CampaignsConfig contains campaign simulation settings
type CampaignsConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ServerConfig contains mock API server settings
type ServerConfig struct {
	ListenAddr       string        `yaml:"listen_addr"`
	DatabasePath     string        `yaml:"database_path"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	DeliveryInterval time.Duration `yaml:"delivery_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// envOverrides are applied on top of the YAML file
type envOverrides struct {
	APIURL    string `env:"WADESK_API_URL"`
	StatePath string `env:"WADESK_STATE_PATH"`
	LogLevel  string `env:"WADESK_LOG_LEVEL"`
	JWTSecret string `env:"WADESK_JWT_SECRET"`
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Environment variables (and a .env file in the working
// directory) override file values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	// .env is optional
	_ = godotenv.Load()

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.StatePath != "" {
		c.State.Path = o.StatePath
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.JWTSecret != "" {
		c.Server.JWTSecret = o.JWTSecret
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.State.Path == "" {
		c.State.Path = DefaultStatePath()
	}
	if c.Chat.PollInterval == 0 {
		c.Chat.PollInterval = 5 * time.Second
	}
	if c.Campaigns.TickInterval == 0 {
		c.Campaigns.TickInterval = time.Second
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.DatabasePath == "" {
		c.Server.DatabasePath = "./wadesk.db"
	}
	if c.Server.TokenTTL == 0 {
		c.Server.TokenTTL = 24 * time.Hour
	}
	if c.Server.DeliveryInterval == 0 {
		c.Server.DeliveryInterval = 2 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate validates the client part of the configuration
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Chat.PollInterval < 0 || c.Campaigns.TickInterval < 0 {
		return fmt.Errorf("intervals must not be negative")
	}

	return nil
}

// ValidateServer validates the settings the mock API server needs
func (c *Config) ValidateServer() error {
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required")
	}
	if len(c.Server.JWTSecret) < 32 {
		return fmt.Errorf("server.jwt_secret must be at least 32 characters")
	}
	return nil
}

// DefaultStatePath returns ~/.wadesk/state.db, or a relative path when the
// home directory is unknown
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wadesk", "state.db")
	}
	return filepath.Join(home, ".wadesk", "state.db")
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wadesk.yaml"
	}
	return filepath.Join(home, ".wadesk", "config.yaml")
}
