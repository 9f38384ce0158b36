package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the task command service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	DatabaseURL string

	LLMMode       string
	LLMHTTPURL    string
	LLMAPIKey     string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	NotifyAPIURL    string
	NotifyAPIKey    string
	NotifyFromEmail string

	ReadLimitDefault int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "tasktalk"),
		AllowAnyOrigin:   false,
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		LLMMode:          envOrDefault("LLM_MODE", "auto"),
		LLMHTTPURL:       envTrimmed("LLM_HTTP_URL"),
		LLMAPIKey:        envTrimmed("LLM_API_KEY"),
		LLMTimeout:       30 * time.Second,
		LLMMaxRetries:    2,
		NotifyAPIURL:     envOrDefault("NOTIFY_API_URL", "https://api.resend.com/emails"),
		NotifyAPIKey:     envTrimmed("NOTIFY_API_KEY"),
		NotifyFromEmail:  envOrDefault("NOTIFY_FROM_EMAIL", "onboarding@resend.dev"),
		ShutdownTimeout:  15 * time.Second,
		ReadLimitDefault: 20,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTimeout, err = durationFromEnv("LLM_TIMEOUT", cfg.LLMTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMMaxRetries, err = intFromEnv("LLM_MAX_RETRIES", cfg.LLMMaxRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.ReadLimitDefault, err = intFromEnv("READ_LIMIT_DEFAULT", cfg.ReadLimitDefault)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.LLMTimeout < time.Second {
		return Config{}, fmt.Errorf("LLM_TIMEOUT must be at least 1s")
	}
	if cfg.LLMMaxRetries < 0 {
		return Config{}, fmt.Errorf("LLM_MAX_RETRIES must be >= 0")
	}
	if cfg.ReadLimitDefault <= 0 {
		return Config{}, fmt.Errorf("READ_LIMIT_DEFAULT must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LLMMode)) {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("LLM_MODE must be one of auto|http|mock, got %q", cfg.LLMMode)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
