package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gatherctl/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration

	// StateDir holds the session state file shared by every gatherctl process
	// of this user.
	StateDir string

	PageSize int

	LogLevel  string
	LogFormat string

	Log *logger.Logger
}

func Load(component string) *Config {
	// Local .env overrides are optional; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  getEnvStr(EnvAPIBaseURL, DefaultAPIBaseURL),
		HTTPTimeout: getEnvDuration(EnvHTTPTimeout, DefaultHTTPTimeout),

		StateDir: getEnvStr(EnvStateDir, defaultStateDir()),

		PageSize: getEnvNum(EnvPageSize, DefaultPageSize),

		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: component,
	})

	return cfg
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %v", c.HTTPTimeout)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be at least 1, got %d", c.PageSize)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state directory is not set")
	}
	return nil
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "gatherctl")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
