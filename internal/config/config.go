// Package config defines the inventory configuration and its validation.
package config

import (
	"fmt"
	"strings"
)

// Defaults used when neither the config file nor the environment set a key.
const (
	DefaultStorePath = "inventory.csv"
	DefaultLogFile   = "inventory.log"
	DefaultLogLevel  = "info"
)

var _ Validator = (*Config)(nil)

type StoreConfig struct {
	Path string `koanf:"path"`
}

func (c *StoreConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("store path is not configured")
	}
	return nil
}

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

func (c *LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Level)
	}
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("log file is not configured")
	}
	return nil
}

type Config struct {
	Store StoreConfig `koanf:"store"`
	Log   LogConfig   `koanf:"log"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Store Configuration ---\n")
	b.WriteString(fmt.Sprintf("  store.path: %s\n", c.Store.Path))

	b.WriteString("\n--- Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  log.file: %s\n", c.Log.File))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
