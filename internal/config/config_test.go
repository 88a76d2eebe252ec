package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
base_url: https://api.example.com
username: admin
password: secret
timeout_seconds: 5
cache_ttl_seconds: 60
fan_out_limit: 4
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("base_url = %q", cfg.BaseURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout())
	}
	if cfg.CacheTTL() != time.Minute {
		t.Fatalf("cache ttl = %v", cfg.CacheTTL())
	}
	if cfg.FanOutLimit != 4 {
		t.Fatalf("fan_out_limit = %d", cfg.FanOutLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TENANTGRID_BASE_URL", "https://env.example.com")
	t.Setenv("TENANTGRID_API_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Fatalf("base_url = %q", cfg.BaseURL)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("api_key = %q", cfg.APIKey)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("default timeout = %v", cfg.Timeout())
	}
}

func TestLoadRejectsIncomplete(t *testing.T) {
	for _, key := range []string{"TENANTGRID_BASE_URL", "TENANTGRID_USERNAME", "TENANTGRID_PASSWORD", "TENANTGRID_API_KEY"} {
		t.Setenv(key, "")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error without base_url")
	}

	t.Setenv("TENANTGRID_BASE_URL", "https://env.example.com")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error without credentials")
	}
}
