package config

import "time"

// APIConfig holds settings for the HTTP API.
type APIConfig struct {
	Addr               string   `json:"addr"`
	AllowedOrigins     []string `json:"allowed_origins"`
	ReadTimeoutSeconds int      `json:"read_timeout_seconds"`
	MaxHours           int      `json:"max_hours"`
	// Token enables bearer authentication on the simulation routes.
	Token string `json:"token"`
	// JWTSecret additionally accepts HS256 tokens signed with it.
	JWTSecret string `json:"jwt_secret"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.MaxHours <= 0 {
		c.MaxHours = 24 * 366
	}
}

func (c APIConfig) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
