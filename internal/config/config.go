package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	LogLevel   string `yaml:"log_level"`

	CredentialsPath string `yaml:"credentials_path"`
	ExportDir       string `yaml:"export_dir"`

	// HTTPTimeout zero means no timeout; a hung request stays submitting.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	SuggestLimit       int           `yaml:"suggest_limit"`
	SuggestMinInterval time.Duration `yaml:"suggest_min_interval"`

	AuditLimit int `yaml:"audit_limit"`

	// MetricsPort empty disables the metrics listener.
	MetricsPort string `yaml:"metrics_port"`
}

// Load builds the config from environment variables with defaults, then
// applies the optional YAML file named by AE_CONFIG_FILE on top.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL: mustEnv("AE_API_BASE_URL", "http://localhost:8000"),
		LogLevel:   mustEnv("AE_LOG_LEVEL", "info"),

		CredentialsPath: mustEnv("AE_CREDENTIALS_PATH", defaultCredentialsPath()),
		ExportDir:       mustEnv("AE_EXPORT_DIR", "."),

		HTTPTimeout: time.Duration(mustEnvInt("AE_HTTP_TIMEOUT_SECONDS", 0)) * time.Second,

		SuggestLimit:       mustEnvInt("AE_SUGGEST_LIMIT", 10),
		SuggestMinInterval: time.Duration(mustEnvInt("AE_SUGGEST_MIN_INTERVAL_MS", 250)) * time.Millisecond,

		AuditLimit: mustEnvInt("AE_AUDIT_LIMIT", 100),

		MetricsPort: mustEnv("AE_METRICS_PORT", ""),
	}

	if path := os.Getenv("AE_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ae-console-credentials.json"
	}
	return dir + "/ae-console/credentials.json"
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
