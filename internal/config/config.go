// Package config loads the runtime configuration of the world, the schedule and their
// observability.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/traitquery/internal/core/observability/log"
	"github.com/zeusync/traitquery/internal/core/store"
)

var (
	ErrInvalidLevel     = errors.New("invalid log level")
	ErrInvalidCapacity  = errors.New("table capacity must not be negative")
	ErrInvalidWorkers   = errors.New("schedule workers must not be negative")
	ErrInvalidNamespace = errors.New("metrics namespace must not be empty")
)

type Config struct {
	Log      LogConfig      `yaml:"log" json:"log"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type StoreConfig struct {
	// TableCapacity is the initial row capacity of new tables.
	TableCapacity int `yaml:"table_capacity" json:"table_capacity"`
	// Storage overrides the storage type of components by type name.
	Storage map[string]string `yaml:"storage" json:"storage"`
}

type ScheduleConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info"},
		Store:    StoreConfig{TableCapacity: 64},
		Schedule: ScheduleConfig{Workers: 0},
		Metrics:  MetricsConfig{Enabled: false, Namespace: "traitquery"},
	}
}

// LoadYAML reads a YAML document over the defaults and validates the result.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadJSON reads a JSON document over the defaults and validates the result.
func LoadJSON(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error", "silent", "none", "off":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	if c.Store.TableCapacity < 0 {
		return ErrInvalidCapacity
	}
	if c.Schedule.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return ErrInvalidNamespace
	}
	if _, err := c.StorageOverrides(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	return log.ParseLevel(c.Log.Level)
}

// StorageOverrides parses Store.Storage.
func (c *Config) StorageOverrides() (map[string]store.StorageType, error) {
	out := make(map[string]store.StorageType, len(c.Store.Storage))
	for name, raw := range c.Store.Storage {
		st, err := store.ParseStorageType(raw)
		if err != nil {
			return nil, fmt.Errorf("storage of %s: %w", name, err)
		}
		out[name] = st
	}
	return out, nil
}
