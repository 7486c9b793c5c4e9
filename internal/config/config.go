// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DownloadsDir    string   `yaml:"downloads_dir"`
	ArchiveDir      string   `yaml:"archive_dir"`
	HistoryPath     string   `yaml:"history_path"`
	ThresholdDays   int      `yaml:"threshold_days"`
	UseLimit        int      `yaml:"use_limit"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	DryRun          bool     `yaml:"dry_run"`
	Verbose         bool     `yaml:"verbose"`
}

// Threshold returns the staleness threshold as a duration
func (c *Config) Threshold() time.Duration {
	return time.Duration(c.ThresholdDays) * 24 * time.Hour
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := GetDefault()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ThresholdDays < 0 {
		return fmt.Errorf("threshold_days must be >= 0")
	}
	if c.UseLimit < 0 {
		return fmt.Errorf("use_limit must be >= 0")
	}

	// Validate directories are absolute
	for _, path := range []string{c.DownloadsDir, c.ArchiveDir, c.HistoryPath} {
		if path != "" && !filepath.IsAbs(path) {
			return fmt.Errorf("path must be absolute: %s", path)
		}
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "downkeep")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig, err := GetDefault()
		if err != nil {
			return "", err
		}
		if err := Save(defaultConfig, configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
