// Package config provides configuration loading for ctrld.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level ctrld configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Slack    SlackConfig    `koanf:"slack"`
	Manifest ManifestConfig `koanf:"manifest"`
}

// ServerConfig holds the operational HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// SlackConfig holds Slack credentials. Tokens are secrets and are expected
// to come from the environment, not the config file.
type SlackConfig struct {
	AppToken string `koanf:"app_token"`
	BotToken string `koanf:"bot_token"`
}

// ManifestConfig holds registry persistence settings.
type ManifestConfig struct {
	// Path is the manifest file location. Empty means the default
	// ~/.config/ctrld/manifest.toml.
	Path string `koanf:"path"`
}

// Validate checks the configuration for invalid values. Slack token
// presence is checked by the slack package at startup, not here, so that
// local commands work without credentials.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	return nil
}
