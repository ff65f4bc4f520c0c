package auth

import (
	"errors"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf holds the client-credentials settings of the spot price API.
type Conf struct {
	ClientID     string `json:"client_id" yaml:"client_id" koanf:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret" koanf:"client_secret"`
	AuthURL      string `json:"auth_url" yaml:"auth_url" koanf:"auth_url"`
}

// Enabled reports whether credentials were configured at all.
func (c Conf) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.AuthURL != ""
}

// Validate checks that a configured credential set is complete.
func (c Conf) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("auth: client_id and client_secret are required")
	}
	if c.AuthURL == "" {
		return errors.New("auth: auth_url is required")
	}
	return nil
}

func (c *Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
	}
}
