package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Cache.GetTTL() != 15*time.Second {
		t.Errorf("Cache TTL default = %v, want 15s", cfg.Cache.GetTTL())
	}
	if cfg.Cache.GetSweep() != 2*time.Minute {
		t.Errorf("Cache sweep default = %v, want 2m", cfg.Cache.GetSweep())
	}
	if cfg.Clients.Yahoo.BaseURL == "" || cfg.Clients.Google.BaseURL == "" {
		t.Error("client base URLs should have defaults")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "9090")
	t.Setenv("FOLIO_HOLDINGS_PATH", "/tmp/holdings.json")
	t.Setenv("FOLIO_CACHE_TTL", "45s")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Holdings.Path != "/tmp/holdings.json" {
		t.Errorf("Holdings.Path = %q after env override", cfg.Holdings.Path)
	}
	if cfg.Cache.GetTTL() != 45*time.Second {
		t.Errorf("Cache TTL = %v after env override, want 45s", cfg.Cache.GetTTL())
	}
}

func TestLoadConfig_FileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	content := `
environment = "production"

[server]
port = 9999

[clients.yahoo]
rate_limit = 2
timeout = "5s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Clients.Yahoo.GetTimeout() != 5*time.Second {
		t.Errorf("Yahoo timeout = %v, want 5s", cfg.Clients.Yahoo.GetTimeout())
	}
	// Unset fields keep defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/folio.toml")
	if err != nil {
		t.Fatalf("LoadConfig should skip missing files, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestCacheConfig_InvalidDurationFallsBack(t *testing.T) {
	cfg := CacheConfig{TTL: "not-a-duration", Sweep: ""}
	if cfg.GetTTL() != 15*time.Second {
		t.Errorf("GetTTL = %v, want fallback 15s", cfg.GetTTL())
	}
	if cfg.GetSweep() != 2*time.Minute {
		t.Errorf("GetSweep = %v, want fallback 2m", cfg.GetSweep())
	}
}
