// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Holdings    HoldingsConfig `toml:"holdings"`
	Cache       CacheConfig    `toml:"cache"`
	Clients     ClientsConfig  `toml:"clients"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// HoldingsConfig points at the static holdings definition file.
type HoldingsConfig struct {
	Path string `toml:"path"`
}

// CacheConfig holds quote cache configuration.
type CacheConfig struct {
	TTL   string `toml:"ttl"`
	Sweep string `toml:"sweep"`
}

// GetTTL parses and returns the cache time-to-live
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetSweep parses and returns the expired-entry sweep interval
func (c *CacheConfig) GetSweep() time.Duration {
	d, err := time.ParseDuration(c.Sweep)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Google GoogleConfig `toml:"google"`
}

// YahooConfig holds live-quote provider configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GoogleConfig holds fundamentals provider configuration
type GoogleConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// GetTimeout parses and returns the timeout duration
func (c *GoogleConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// BrowserUserAgent is sent to the scraped fundamentals provider, which
// serves a different (unparseable) page to non-browser agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Holdings: HoldingsConfig{
			Path: "data/portfolio.json",
		},
		Cache: CacheConfig{
			TTL:   "15s",
			Sweep: "2m",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Google: GoogleConfig{
				BaseURL:   "https://www.google.com/finance",
				RateLimit: 5,
				Timeout:   "30s",
				UserAgent: BrowserUserAgent,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_HOLDINGS_PATH"); path != "" {
		config.Holdings.Path = path
	}

	if ttl := os.Getenv("FOLIO_CACHE_TTL"); ttl != "" {
		config.Cache.TTL = ttl
	}

	if v := os.Getenv("FOLIO_YAHOO_BASE_URL"); v != "" {
		config.Clients.Yahoo.BaseURL = v
	}
	if v := os.Getenv("FOLIO_GOOGLE_BASE_URL"); v != "" {
		config.Clients.Google.BaseURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
