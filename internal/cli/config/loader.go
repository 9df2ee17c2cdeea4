package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/maps"
	"gopkg.in/yaml.v3"

	"github.com/trakjobs/trakjobs-go/internal/infra/confloader"
)

const (
	dirName  = ".trakjobs"
	fileName = "cli.yaml"
)

// DefaultDir returns the per-user state directory (~/.trakjobs).
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(homeDir, dirName)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), fileName)
}

// Load resolves the configuration. An empty path reads the default file
// if it exists; an explicit path must exist. overrides holds flag values
// keyed by dotted names and wins over every other source.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	src := confloader.Sources{File: path, Overrides: overrides}
	if path == "" {
		src.File, src.Optional = DefaultConfigPath(), true
	}

	cfg := Default()
	if err := confloader.Load(cfg, src); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML with mode 0600.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := yaml.Marshal(cfg.ToMap())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(path, data)
}

// Set changes one key in the file at path, keeping every other entry as
// written. The result must still validate.
func Set(path, key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown configuration key %q", key)
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	setNested(doc, strings.Split(key, "."), value)

	flat, _ := maps.Flatten(doc, nil, ".")
	cfg := Default()
	if err := confloader.Decode(flat, cfg); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(path, out)
}

func setNested(doc map[string]any, path []string, value string) {
	for _, part := range path[:len(path)-1] {
		next, ok := doc[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[part] = next
		}
		doc = next
	}
	doc[path[len(path)-1]] = scalar(value)
}

// scalar types a command-line value the way YAML would ("true", "25").
func scalar(value string) any {
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
		return value
	}
	switch v.(type) {
	case bool, int, float64:
		return v
	}
	return value
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cli-*.yaml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
