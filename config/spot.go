package config

import (
	"slices"

	"github.com/kilianp07/pvsim/auth"
	"github.com/kilianp07/pvsim/connectors/factory"
	"github.com/kilianp07/pvsim/core/model"
)

// SpotConfig enables fetching wholesale prices for inputs that lack them.
// Source selects the wholesale market API or a local price file.
type SpotConfig struct {
	Enabled bool      `json:"enabled"`
	Source  string    `json:"source"`
	BaseURL string    `json:"base_url"`
	Path    string    `json:"path"`
	Auth    auth.Conf `json:"auth"`
}

func (c *SpotConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = factory.IDWholesaleMarket
	}
}

func (c SpotConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if !slices.Contains(factory.IDs(), c.Source) {
		return model.NewConfigurationError("spot.source", "unknown source %q", c.Source)
	}
	if c.Source == factory.IDPriceFile && c.Path == "" {
		return model.NewConfigurationError("spot.path", "required for source %s", c.Source)
	}
	if err := c.Auth.Validate(); err != nil {
		return model.NewConfigurationError("spot.auth", "%v", err)
	}
	return nil
}

// Params returns the factory parameters for the configured source.
func (c SpotConfig) Params() factory.Params {
	p := factory.Params{BaseURL: c.BaseURL, Path: c.Path}
	if c.Auth.Enabled() {
		p.Cred = auth.NewClientCred(c.Auth)
	}
	return p
}
