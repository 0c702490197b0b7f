package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Save original env
	original := os.Getenv("PM_BACKEND_URL")
	defer func() {
		if original != "" {
			os.Setenv("PM_BACKEND_URL", original)
		} else {
			os.Unsetenv("PM_BACKEND_URL")
		}
	}()

	os.Setenv("PM_BACKEND_URL", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Backend.URL != "http://localhost:3000" {
		t.Errorf("Expected backend URL from env, got: %s", cfg.Backend.URL)
	}
	if cfg.View.PageSize != 10 {
		t.Errorf("Expected default page size 10, got: %d", cfg.View.PageSize)
	}
	if cfg.Database.Enabled {
		t.Error("Expected journal database to be disabled without database_url")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{
			URL:     "https://dummyjson.com",
			Timeout: 5 * time.Second,
		},
		Server: ServerConfig{Port: 8080},
		View:   ViewConfig{PageSize: 10},
		Warmer: WarmerConfig{Pages: 3},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should not error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c Config) Config
	}{
		{"missing backend", func(c Config) Config { c.Backend.URL = ""; return c }},
		{"zero timeout", func(c Config) Config { c.Backend.Timeout = 0; return c }},
		{"page size too large", func(c Config) Config { c.View.PageSize = 500; return c }},
		{"bad port", func(c Config) Config { c.Server.Port = 0; return c }},
		{"too many warm pages", func(c Config) Config { c.Warmer.Pages = 51; return c }},
		{"negative warm interval", func(c Config) Config { c.Warmer.Interval = -time.Second; return c }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := tt.mutate(*cfg)
			if err := bad.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestToEnvKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"backend_url", "BACKEND_URL"},
		{"log-level", "LOG_LEVEL"},
		{"page_size", "PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := toEnvKey(tt.key); got != tt.expected {
				t.Errorf("toEnvKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}
