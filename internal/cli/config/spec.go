package config

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/knadh/koanf/maps"

	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/core/listing"
	"github.com/trakjobs/trakjobs-go/internal/session"
)

// CLIConfig is the configuration for trakjobs-cli.
type CLIConfig struct {
	API       APIConfig       `koanf:"api"`
	Session   SessionConfig   `koanf:"session"`
	Output    string          `koanf:"output"` // table, json, yaml
	Log       LogConfig       `koanf:"log"`
	List      ListConfig      `koanf:"list"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// APIConfig describes the remote TrakJobs API.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	CAFile    string        `koanf:"ca_file"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst int           `koanf:"rate_burst"`
}

// SessionConfig selects where the login session is kept.
type SessionConfig struct {
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
	Encrypt bool   `koanf:"encrypt"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ListConfig tunes list views.
type ListConfig struct {
	PageSize int           `koanf:"page_size"`
	Debounce time.Duration `koanf:"debounce"`
}

// TelemetryConfig enables trace export. An empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APIConfig{
			BaseURL:   connection.DefaultBaseURL,
			Timeout:   connection.DefaultTimeout,
			RateBurst: 1,
		},
		Session: SessionConfig{
			Backend: session.BackendFile,
			Dir:     DefaultDir(),
		},
		Output: "table",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		List: ListConfig{
			PageSize: 10,
			Debounce: listing.DefaultDebounce,
		},
	}
}

var (
	outputFormats = []string{"table", "json", "yaml"}
	backends      = []string{session.BackendFile, session.BackendBadger, session.BackendMemory}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
)

// Validate checks value ranges and enumerations.
func (c *CLIConfig) Validate() error {
	switch {
	case c.API.BaseURL == "":
		return fmt.Errorf("api.base_url is required")
	case c.API.Timeout <= 0:
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	case c.API.RateLimit < 0:
		return fmt.Errorf("api.rate_limit must not be negative")
	case c.API.RateLimit > 0 && c.API.RateBurst < 1:
		return fmt.Errorf("api.rate_burst must be at least 1")
	case !slices.Contains(outputFormats, c.Output):
		return fmt.Errorf("output must be one of %v, got %q", outputFormats, c.Output)
	case !slices.Contains(backends, c.Session.Backend):
		return fmt.Errorf("session.backend must be one of %v, got %q", backends, c.Session.Backend)
	case !slices.Contains(logLevels, c.Log.Level):
		return fmt.Errorf("log.level must be one of %v, got %q", logLevels, c.Log.Level)
	case !slices.Contains(logFormats, c.Log.Format):
		return fmt.Errorf("log.format must be one of %v, got %q", logFormats, c.Log.Format)
	case c.List.PageSize <= 0:
		return fmt.Errorf("list.page_size must be positive")
	case c.List.Debounce < 0:
		return fmt.Errorf("list.debounce must not be negative")
	}
	return nil
}

// ToMap returns the configuration as the nested document written to disk.
// Durations are rendered as strings ("30s").
func (c *CLIConfig) ToMap() map[string]any {
	return map[string]any{
		"api": map[string]any{
			"base_url":   c.API.BaseURL,
			"timeout":    c.API.Timeout.String(),
			"ca_file":    c.API.CAFile,
			"rate_limit": c.API.RateLimit,
			"rate_burst": c.API.RateBurst,
		},
		"session": map[string]any{
			"backend": c.Session.Backend,
			"dir":     c.Session.Dir,
			"encrypt": c.Session.Encrypt,
		},
		"output": c.Output,
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"list": map[string]any{
			"page_size": c.List.PageSize,
			"debounce":  c.List.Debounce.String(),
		},
		"telemetry": map[string]any{
			"otlp_endpoint": c.Telemetry.OTLPEndpoint,
		},
	}
}

// Flat returns the configuration keyed by dotted names.
func (c *CLIConfig) Flat() map[string]any {
	flat, _ := maps.Flatten(c.ToMap(), nil, ".")
	return flat
}

// Keys lists every configuration key, sorted.
func Keys() []string {
	flat := Default().Flat()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	_, ok := Default().Flat()[key]
	return ok
}
