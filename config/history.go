package config

import (
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/runstore"
)

// Run history backends.
const (
	HistoryMemory   = "memory"
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
)

// HistoryConfig selects where finished runs are kept.
type HistoryConfig struct {
	Backend  string `json:"backend"`
	Path     string `json:"path"`
	DSN      string `json:"dsn"`
	Capacity int    `json:"capacity"`
}

func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = HistoryMemory
	}
	if c.Backend == HistorySQLite && c.Path == "" {
		c.Path = "pvsim.db"
	}
	if c.Capacity <= 0 {
		c.Capacity = runstore.DefaultCapacity
	}
}

func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case HistoryMemory, HistorySQLite:
		return nil
	case HistoryPostgres:
		if c.DSN == "" {
			return model.NewConfigurationError("history.dsn", "required for the postgres backend")
		}
		return nil
	default:
		return model.NewConfigurationError("history.backend", "unknown backend %q", c.Backend)
	}
}
