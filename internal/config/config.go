// Package config loads the tracker's runtime configuration from an optional
// .env file, an optional config file and EXPENSES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// EnvPrefix is prepended to every environment variable, e.g. EXPENSES_PORT
const EnvPrefix = "EXPENSES"

var (
	validBackends  = []string{BackendBadger, BackendSQLite, BackendMemory}
	validLogLevels = []string{"debug", "info", "warn", "warning", "error", "fatal"}
	validScopes    = []string{"all", "filtered"}
)

type Config struct {
	// HTTP server
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Storage
	DataBackend string `mapstructure:"data_backend"`
	DataDir     string `mapstructure:"data_dir"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	StorageKey  string `mapstructure:"storage_key"`

	LogLevel string `mapstructure:"log_level"`

	// Summary view
	SummaryScope    string        `mapstructure:"summary_scope"`
	SummaryCache    bool          `mapstructure:"summary_cache"`
	SummaryCacheTTL time.Duration `mapstructure:"summary_cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("data_backend", BackendBadger)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("sqlite_path", "./data/expenses.db")
	v.SetDefault("storage_key", "expenses")
	v.SetDefault("log_level", "info")
	v.SetDefault("summary_scope", "all")
	v.SetDefault("summary_cache", false)
	v.SetDefault("summary_cache_ttl", time.Hour)
}

// Load reads the configuration. A .env file in the working directory is
// loaded first if present; path names an optional YAML, TOML or JSON file.
// Environment variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.DataBackend = strings.ToLower(strings.TrimSpace(c.DataBackend))
	c.SummaryScope = strings.ToLower(strings.TrimSpace(c.SummaryScope))

	return &c, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the configuration and returns every problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendBadger && c.DataDir == "" {
		problems = append(problems, "data directory cannot be empty when using badger backend")
	}
	if c.DataBackend == BackendSQLite && c.SQLitePath == "" {
		problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		problems = append(problems, "storage key cannot be empty")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if !slices.Contains(validScopes, c.SummaryScope) {
		problems = append(problems, fmt.Sprintf("invalid summary scope '%s': must be one of %v", c.SummaryScope, validScopes))
	}

	if c.SummaryCache && c.SummaryCacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid summary cache ttl %v: must be positive", c.SummaryCacheTTL))
	}

	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}

	return nil
}
