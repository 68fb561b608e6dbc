// Package config loads server configuration from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all server settings. Values come from PAYBOOK_* environment
// variables, with flag overrides in cmd/server for local development.
type Config struct {
	// Port the HTTP server listens on.
	Port int `default:"8080"`

	// DBPath is the SQLite database path. ":memory:" works for dev.
	DBPath string `envconfig:"DB_PATH" default:"paybook.db"`

	// TokenSecret signs session tokens. Empty disables authentication
	// entirely: the server runs single-user on the default owner.
	TokenSecret string `envconfig:"TOKEN_SECRET"`

	// TokenIssuer is the iss claim on session tokens.
	TokenIssuer string `envconfig:"TOKEN_ISSUER" default:"paybook"`

	// DevMode enables verbose console logging.
	DevMode bool `envconfig:"DEV_MODE"`
}

// Load reads configuration from PAYBOOK_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("paybook", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
