package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SuggestLimit != 10 {
		t.Errorf("SuggestLimit = %d", cfg.SuggestLimit)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %v, want no timeout by default", cfg.HTTPTimeout)
	}
	if cfg.MetricsPort != "" {
		t.Errorf("MetricsPort = %q, want disabled by default", cfg.MetricsPort)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AE_API_BASE_URL", "https://pv.example.org")
	t.Setenv("AE_HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("AE_SUGGEST_MIN_INTERVAL_MS", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://pv.example.org" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.SuggestMinInterval != 100*time.Millisecond {
		t.Errorf("SuggestMinInterval = %v", cfg.SuggestMinInterval)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("AE_SUGGEST_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SuggestLimit != 10 {
		t.Errorf("SuggestLimit = %d, want default", cfg.SuggestLimit)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("api_base_url: https://file.example.org\nsuggest_limit: 5\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AE_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://file.example.org" {
		t.Errorf("APIBaseURL = %q, want file value", cfg.APIBaseURL)
	}
	if cfg.SuggestLimit != 5 {
		t.Errorf("SuggestLimit = %d, want file value", cfg.SuggestLimit)
	}
	if cfg.AuditLimit != 100 {
		t.Errorf("AuditLimit = %d, want env default preserved", cfg.AuditLimit)
	}
}

func TestLoadMissingConfigFileErrors(t *testing.T) {
	t.Setenv("AE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
