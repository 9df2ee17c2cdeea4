package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix used when Sources
// leaves EnvPrefix empty.
const DefaultEnvPrefix = "TRAKJOBS_"

// Sources lists where configuration comes from. Later sources override
// earlier ones: File, then the environment, then Overrides.
type Sources struct {
	// File is a YAML file. Empty skips it.
	File string
	// Optional makes a missing File behave like an empty one.
	Optional bool
	// EnvPrefix selects environment variables; "-" disables them.
	EnvPrefix string
	// Overrides holds values keyed by dotted names, typically from flags.
	Overrides map[string]any
}

// Load merges sources into target. Fields of target not present in any
// source keep their values, so target may be pre-filled with defaults.
func Load(target any, src Sources) error {
	k := koanf.New(".")

	if src.File != "" {
		err := k.Load(file.Provider(src.File), yaml.Parser())
		if err != nil && !(src.Optional && errors.Is(err, fs.ErrNotExist)) {
			return fmt.Errorf("load config file %s: %w", src.File, err)
		}
	}

	if src.EnvPrefix != "-" {
		prefix := src.EnvPrefix
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		provider := env.Provider(prefix, ".", func(name string) string {
			return EnvKey(prefix, name)
		})
		if err := k.Load(provider, nil); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}

	if len(src.Overrides) > 0 {
		if err := k.Load(mapProvider(src.Overrides), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Decode applies values keyed by dotted names to target without reading
// any file or the environment.
func Decode(values map[string]any, target any) error {
	return Load(target, Sources{EnvPrefix: "-", Overrides: values})
}

// EnvKey converts an environment variable name to a configuration key.
// The first underscore after the prefix separates the section from the
// key: TRAKJOBS_API_BASE_URL is api.base_url, TRAKJOBS_OUTPUT is output.
func EnvKey(prefix, name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, prefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}
