package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the service configuration parsed from environment variables.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
	Google GoogleConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoConfig holds database connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"wavenotes"`
}

// TokenConfig holds session token settings. Tokens are valid for 7 days by
// default.
type TokenConfig struct {
	Secret    string        `env:"TOKEN_SECRET"`
	ExpiresIn time.Duration `env:"TOKEN_EXPIRES_IN" envDefault:"168h"`
}

// GoogleConfig holds the OAuth client identifier used to check ID token
// audiences.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// Load parses the configuration from environment variables and validates
// it. Missing required settings are fatal.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

func (c *Config) validate() error {
	if c.Token.Secret == "" {
		return fmt.Errorf("missing TOKEN_SECRET environment variable")
	}
	if c.Token.ExpiresIn <= 0 {
		return fmt.Errorf("TOKEN_EXPIRES_IN must be positive")
	}
	if c.Google.ClientID == "" {
		return fmt.Errorf("missing GOOGLE_CLIENT_ID environment variable")
	}

	return nil
}
