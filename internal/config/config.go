// Package config loads CLI configuration from a YAML file with environment
// overrides for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for the tenantgrid CLI.
type Config struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	APIKey   string `yaml:"api_key"`

	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	RequestsPerSec  float64 `yaml:"requests_per_second"`
	FanOutLimit     int     `yaml:"fan_out_limit"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	LogLevel string `yaml:"log_level"`
}

// Load reads a config file and applies environment overrides. Credentials
// may come entirely from the environment, so a missing file is only an error
// when a path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("TENANTGRID_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TENANTGRID_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("TENANTGRID_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("TENANTGRID_API_KEY"); v != "" {
		cfg.APIKey = v
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if cfg.APIKey == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("either api_key or username and password are required")
	}
	return cfg, nil
}

// Timeout returns the request timeout with a default of 30s.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the response cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
