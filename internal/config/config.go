// Package config provides the configuration schema and loader for the
// dictato rewrite service.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps [time.Duration] so that YAML values may use the Go duration
// syntax ("2s", "500ms"). Plain integers are rejected to avoid ambiguity
// between seconds and nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements [yaml.Unmarshaler].
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats d using the [time.Duration] syntax.
func (d Duration) String() string { return time.Duration(d).String() }

// LogLevel controls log verbosity for the dictato server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StoreKind selects where dictionary rule text is persisted.
type StoreKind string

const (
	// StoreFile keeps the rules in a local text file.
	StoreFile StoreKind = "file"

	// StorePostgres keeps the rules in a PostgreSQL table.
	StorePostgres StoreKind = "postgres"
)

// IsValid reports whether k is a recognised store kind.
func (k StoreKind) IsValid() bool {
	return k == StoreFile || k == StorePostgres
}

// Config is the root configuration structure for dictato.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Rules  RulesConfig  `yaml:"rules"`
	Store  StoreConfig  `yaml:"store"`
}

// ServerConfig holds network and logging settings for the dictato server.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP API listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// RulesConfig controls how the active dictionary is refreshed.
type RulesConfig struct {
	// WatchInterval is how often the rules file is polled for out-of-band
	// edits, so that changes made with a text editor are picked up without a
	// restart. Zero disables watching. Only meaningful for the file store.
	WatchInterval Duration `yaml:"watch_interval"`
}

// StoreConfig selects and configures the rule persistence backend.
type StoreConfig struct {
	// Kind selects the backend. Default: file.
	Kind StoreKind `yaml:"kind"`

	// Path is the rules file location for the file store.
	Path string `yaml:"path"`

	// PostgresDSN is the connection string for the postgres store.
	PostgresDSN string `yaml:"postgres_dsn"`
}
