package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
api:
  base_url: "https://dash.example.com/"
  timeout: 10s

state:
  path: "/tmp/wadesk-state.db"

chat:
  poll_interval: 3s

campaigns:
  tick_interval: 500ms

server:
  listen_addr: ":9090"
  jwt_secret: "0123456789abcdef0123456789abcdef"

logging:
  level: "debug"
  format: "json"
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://dash.example.com/" {
		t.Errorf("BaseURL = %v, want https://dash.example.com/", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Chat.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.Chat.PollInterval)
	}
	if cfg.Campaigns.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.Campaigns.TickInterval)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %v, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %v, want json", cfg.Logging.Format)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer() error = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WADESK_API_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v, want http://localhost:8080", cfg.API.BaseURL)
	}
	if cfg.Chat.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Chat.PollInterval)
	}
	if cfg.Campaigns.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.Campaigns.TickInterval)
	}
	if cfg.Server.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Server.TokenTTL)
	}
	if !strings.HasSuffix(cfg.State.Path, "state.db") {
		t.Errorf("State.Path = %v, want .../state.db", cfg.State.Path)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WADESK_API_URL", "http://api.internal:9000")
	t.Setenv("WADESK_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://api.internal:9000" {
		t.Errorf("BaseURL = %v, want http://api.internal:9000", cfg.API.BaseURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %v, want warn", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"negative poll", func(c *Config) { c.Chat.PollInterval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.setDefaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()

	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error for missing jwt secret")
	}

	cfg.Server.JWTSecret = "short"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error for short jwt secret")
	}
}
