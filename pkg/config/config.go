// Package config provides configuration file support for ChadGI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/webhook"
)

// Config represents the ChadGI configuration.
type Config struct {
	Lock     LockConfig     `yaml:"lock"`
	Janitor  JanitorConfig  `yaml:"janitor"`
	Webhooks webhook.Config `yaml:"webhooks"`
	Logging  LoggingConfig  `yaml:"logging"`
	RepoName string         `yaml:"repo_name"`
	WorkerID string         `yaml:"worker_id"`
}

// LockConfig configures staleness and heartbeat timing. The timeout should
// stay well above the heartbeat interval (3-5x at minimum) so a holder that
// heartbeats on schedule is never reclaimed.
type LockConfig struct {
	TimeoutMinutes           int `yaml:"timeout_minutes"`
	HeartbeatIntervalSeconds int `yaml:"heartbeat_interval_seconds"`
}

// JanitorConfig configures the periodic stale-lock sweeper.
type JanitorConfig struct {
	Schedule string `yaml:"schedule"` // cron expression or @every syntax
	Listen   string `yaml:"listen"`   // metrics listen address, empty disables
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Lock: LockConfig{
			TimeoutMinutes:           model.DefaultLockTimeoutMinutes,
			HeartbeatIntervalSeconds: 60,
		},
		Janitor: JanitorConfig{
			Schedule: "@every 5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Policy returns the lock policy derived from this configuration.
func (c *Config) Policy() model.LockPolicy {
	return model.LockPolicy{TimeoutMinutes: c.Lock.TimeoutMinutes}
}

// Load loads configuration from .chadgi/config.yaml.
// Returns default config if the file doesn't exist.
func Load(stateRoot string) (*Config, error) {
	cfg := Default()
	cfgPath := filepath.Join(stateRoot, ".chadgi", "config.yaml")

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return cfg, nil // No config file is OK, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to .chadgi/config.yaml.
func Save(stateRoot string, cfg *Config) error {
	cfgPath := filepath.Join(stateRoot, ".chadgi", "config.yaml")

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
