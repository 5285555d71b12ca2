package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "REHAB_"
	EnvConfigPath = "REHAB_CONFIG"
)

// LoadOption adjusts one Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path      string
	overrides map[string]any
}

// WithFile reads path instead of the file named by REHAB_CONFIG. An empty
// path keeps the environment's choice.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithOverride sets key after every other source, the way a command-line
// flag would. Empty strings are skipped so unset flags leave the key alone.
func WithOverride(key string, value any) LoadOption {
	return func(o *loadOptions) {
		if s, ok := value.(string); ok && s == "" {
			return
		}
		o.overrides[key] = value
	}
}

// Load layers, lowest first: defaults, the YAML file, REHAB_* environment
// variables, then overrides. The result is validated.
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{path: os.Getenv(EnvConfigPath), overrides: map[string]any{}}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	if o.path != "" {
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, o.path, err)
		}
	}

	// REHAB_MOTOR_WEIGHT -> motor_weight. Keys stay flat.
	prefix := strings.ToLower(EnvPrefix)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), prefix)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	for key, v := range o.overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: override %s: %w", ErrLoadConfig, key, err)
		}
	}

	cfg := *New(ctx)
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
