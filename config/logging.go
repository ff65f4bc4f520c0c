package config

import (
	"github.com/rs/zerolog"

	"github.com/kilianp07/pvsim/core/model"
)

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string `json:"level"`
	// Console switches from JSON lines to human readable output.
	Console bool `json:"console"`
	// File also writes JSON lines to this path, rotated by size.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.File != "" && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return model.NewConfigurationError("logging.level", "%v", err)
	}
	if c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return model.NewConfigurationError("logging", "max_backups and max_age_days must not be negative")
	}
	return nil
}

