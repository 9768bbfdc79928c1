// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// WatchConfig configures the optional filesystem-watch loop.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Config is the persistent configuration for the cache inspector.
type Config struct {
	CacheDir    string      `yaml:"cache_dir,omitempty"`
	LogLevel    string      `yaml:"log_level,omitempty"`
	LogFormat   string      `yaml:"log_format,omitempty"`
	Output      string      `yaml:"output,omitempty"`
	Sort        string      `yaml:"sort,omitempty"`
	MetricsAddr string      `yaml:"metrics_addr,omitempty"`
	Watch       WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hfcache-inspector", "config.yaml")
}

// LoadConfig loads configuration from path, or DefaultConfigPath() when path
// is empty. A missing file is not an error: it yields the zero-value
// Config, matching the "empty config is fine" convention this module's
// configuration loading follows throughout.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills any still-zero fields on cfg with the module's
// built-in defaults. Call after LoadConfig and before flags are applied on
// top, giving defaults -> file -> flags precedence. The environment only
// feeds the default cache root (see DefaultCacheDir).
func (cfg *Config) ApplyDefaults() {
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "table"
	}
	if cfg.Sort == "" {
		cfg.Sort = "name"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 2 * time.Second
	}
}

// Save writes cfg to path (or DefaultConfigPath() when empty), creating
// parent directories as needed.
func (cfg *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
