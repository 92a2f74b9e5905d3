package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [Load] when the corresponding field is unset.
const (
	DefaultListenAddr = ":8080"
	DefaultRulesPath  = "rules.txt"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreFile
	}
	if cfg.Store.Kind == StoreFile && cfg.Store.Path == "" {
		cfg.Store.Path = DefaultRulesPath
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if !cfg.Store.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("store.kind %q is invalid; valid values: file, postgres", cfg.Store.Kind))
	}
	if cfg.Store.Kind == StorePostgres && cfg.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required when store.kind is postgres"))
	}

	if cfg.Rules.WatchInterval < 0 {
		errs = append(errs, fmt.Errorf("rules.watch_interval %s must not be negative", cfg.Rules.WatchInterval))
	}
	if cfg.Rules.WatchInterval > 0 && cfg.Store.Kind != StoreFile {
		errs = append(errs, errors.New("rules.watch_interval is only supported with store.kind file"))
	}

	return errors.Join(errs...)
}
