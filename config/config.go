// Package config loads the simulator configuration from a YAML or JSON file
// with PVSIM_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// PVSIM_SIMULATION__PV_CAPACITY_KWP sets simulation.pv_capacity_kwp.
const EnvPrefix = "PVSIM_"

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Input      InputConfig      `json:"input"`
	Output     OutputConfig     `json:"output"`
	Spot       SpotConfig       `json:"spot"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	API        APIConfig        `json:"api"`
	History    HistoryConfig    `json:"history"`
	Logging    LoggingConfig    `json:"logging"`
	Sentry     SentryConfig     `json:"sentry"`
}

// Load reads path, applies environment overrides, defaults and validation.
// An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, model.NewConfigurationError("config", "unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, model.NewConfigurationError("config", "%v", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Input.SetDefaults()
	c.Output.SetDefaults()
	c.Spot.SetDefaults()
	c.MQTT.SetDefaults()
	c.API.SetDefaults()
	c.History.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Spot.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return model.NewConfigurationError("mqtt", "%v", err)
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Sentry.Validate()
}
