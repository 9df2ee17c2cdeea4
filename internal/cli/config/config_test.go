package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != "https://api.trakjobs.com/api/v1" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Output != "table" || cfg.Session.Backend != "file" || cfg.List.PageSize != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.List.Debounce != 300*time.Millisecond {
		t.Errorf("List.Debounce = %v", cfg.List.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".trakjobs", "cli.yaml")) {
		t.Errorf("Path = %q, should end with .trakjobs/cli.yaml", path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
		want   string
	}{
		{"bad output", func(c *CLIConfig) { c.Output = "xml" }, "output"},
		{"bad backend", func(c *CLIConfig) { c.Session.Backend = "redis" }, "session.backend"},
		{"bad level", func(c *CLIConfig) { c.Log.Level = "trace" }, "log.level"},
		{"zero timeout", func(c *CLIConfig) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative rate", func(c *CLIConfig) { c.API.RateLimit = -1 }, "api.rate_limit"},
		{"rate without burst", func(c *CLIConfig) { c.API.RateLimit = 5; c.API.RateBurst = 0 }, "api.rate_burst"},
		{"zero page size", func(c *CLIConfig) { c.List.PageSize = 0 }, "list.page_size"},
		{"empty url", func(c *CLIConfig) { c.API.BaseURL = "" }, "api.base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_DefaultFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want default", cfg.Output)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("Load() should fail for an explicit missing file")
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `
api:
  base_url: https://file.example/api/v1
  timeout: 10s
output: json
list:
  page_size: 25
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRAKJOBS_OUTPUT", "yaml")
	t.Setenv("TRAKJOBS_LOG_LEVEL", "debug")

	cfg, err := Load(path, map[string]any{"api.base_url": "https://flag.example/api/v1"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://flag.example/api/v1" {
		t.Errorf("BaseURL = %q, flag should win", cfg.API.BaseURL)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, env should beat file", cfg.Output)
	}
	if cfg.API.Timeout != 10*time.Second || cfg.List.PageSize != 25 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Session.Backend != "file" {
		t.Errorf("Session.Backend = %q, default should survive", cfg.Session.Backend)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	os.WriteFile(path, []byte("output: xml\n"), 0o600)

	if _, err := Load(path, nil); err == nil {
		t.Error("Load() should reject an invalid output format")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cli.yaml")

	cfg := Default()
	cfg.API.BaseURL = "https://staging.trakjobs.com/api/v1"
	cfg.Session.Encrypt = true
	cfg.List.Debounce = 500 * time.Millisecond

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL || !loaded.Session.Encrypt || loaded.List.Debounce != cfg.List.Debounce {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	os.WriteFile(path, []byte("output: json\n"), 0o600)

	if err := Set(path, "list.page_size", "50"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := Set(path, "session.encrypt", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["output"] != "json" {
		t.Errorf("existing entry lost: %v", doc)
	}
	list, _ := doc["list"].(map[string]any)
	if list["page_size"] != 50 {
		t.Errorf("list.page_size = %#v, want 50", list["page_size"])
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.List.PageSize != 50 || !cfg.Session.Encrypt {
		t.Errorf("Set values not loaded: %+v", cfg)
	}
}

func TestSet_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	if err := Set(path, "api.password", "x"); err == nil {
		t.Error("Set() should reject an unknown key")
	}
	if err := Set(path, "output", "xml"); err == nil {
		t.Error("Set() should reject an invalid value")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("rejected Set must not create the file")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	for _, want := range []string{"api.base_url", "api.ca_file", "session.backend", "output", "list.debounce", "telemetry.otlp_endpoint"} {
		if !IsKey(want) {
			t.Errorf("IsKey(%q) = false", want)
		}
	}
	if len(keys) != 14 {
		t.Errorf("len(Keys()) = %d, want 14: %v", len(keys), keys)
	}
}
