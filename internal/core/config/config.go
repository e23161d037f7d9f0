// Package config loads tool configuration and the authored rule tables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings for the gatekeep tool.
type Config struct {
	DataPath string // ruleset data file (TOML)
	LogLevel string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DataPath: "./data/rules.toml",
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_path", "./data/rules.toml")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("GK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DataPath: v.GetString("data_path"),
		LogLevel: v.GetString("log_level"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks that required paths and levels are sane.
func validateConfig(cfg *Config) error {
	if cfg.DataPath == "" {
		return fmt.Errorf("data_path must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (debug, info, warn, error)", cfg.LogLevel)
	}
	return nil
}
