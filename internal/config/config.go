package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/glimpse/config.yaml"

// Config holds all Glimpse configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Storage  StorageConfig  `yaml:"storage"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplingConfig controls the sampler poll rate and the session builder's
// calibration knobs. The debounce and significance values are deliberately
// configuration, not constants.
type SamplingConfig struct {
	IntervalMs      int `yaml:"interval_ms"`
	DebounceSamples int `yaml:"debounce_samples"`
	MinSessionMs    int `yaml:"min_session_ms"`
	FlushTimeoutMs  int `yaml:"flush_timeout_ms"`
	FlushRetries    int `yaml:"flush_retries"`
}

type StorageConfig struct {
	Path        string `yaml:"path"`
	SQLiteFile  string `yaml:"sqlite_file"`
	JournalMode string `yaml:"journal_mode"`
}

type DaemonConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Interval returns the sampling interval as a duration.
func (c SamplingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// FlushTimeout returns the per-write store timeout as a duration.
func (c SamplingConfig) FlushTimeout() time.Duration {
	return time.Duration(c.FlushTimeoutMs) * time.Millisecond
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyFloors()

	return cfg, nil
}

// applyFloors clamps values that would break the engine if set to zero or
// negative in the file.
func (c *Config) applyFloors() {
	def := DefaultConfig()
	if c.Sampling.IntervalMs <= 0 {
		c.Sampling.IntervalMs = def.Sampling.IntervalMs
	}
	if c.Sampling.DebounceSamples < 1 {
		c.Sampling.DebounceSamples = def.Sampling.DebounceSamples
	}
	if c.Sampling.MinSessionMs < 0 {
		c.Sampling.MinSessionMs = def.Sampling.MinSessionMs
	}
	if c.Sampling.FlushTimeoutMs <= 0 {
		c.Sampling.FlushTimeoutMs = def.Sampling.FlushTimeoutMs
	}
	if c.Sampling.FlushRetries < 0 {
		c.Sampling.FlushRetries = def.Sampling.FlushRetries
	}
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// DatabasePath returns the expanded filesystem path of the SQLite database.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
