// Package config provides configuration loading from environment variables.
// #IMPLEMENTATION_DECISION: Using envconfig for type-safe environment variable parsing
// #CODE_ASSUMPTION: All secrets provided via environment variables (no secret manager integration)
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
// #INTEGRATION_POINT: All services depend on this configuration
type Config struct {
	// Database configuration
	DatabaseURI  string `envconfig:"DATABASE_URI" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"pulsecheck"`

	// JWT configuration. The private key is optional; it is only needed
	// by tooling that mints demo tokens locally.
	JWTPrivateKeyPath string        `envconfig:"JWT_PRIVATE_KEY_PATH"`
	JWTPublicKeyPath  string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	AccessTokenExpiry time.Duration `envconfig:"ACCESS_TOKEN_EXPIRY" default:"1h"`
	JWTIssuer         string        `envconfig:"JWT_ISSUER" default:"pulsecheck"`

	// Server configuration
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// CORS configuration
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Rate limiting
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Export rate limiting; deck rendering is the most expensive request
	ExportRateLimitRequests int           `envconfig:"EXPORT_RATE_LIMIT_REQUESTS" default:"10"`
	ExportRateLimitWindow   time.Duration `envconfig:"EXPORT_RATE_LIMIT_WINDOW" default:"1m"`
}

var (
	instance *Config
	once     sync.Once
	errInit  error
)

// Load loads configuration from environment variables.
// #IMPLEMENTATION_DECISION: Singleton pattern ensures config is loaded once
func Load() (*Config, error) {
	once.Do(func() {
		instance = &Config{}
		errInit = envconfig.Process("PULSECHECK", instance)
		if errInit != nil {
			return
		}

		// Validate configured key files exist up front
		if _, err := os.Stat(instance.JWTPublicKeyPath); os.IsNotExist(err) {
			errInit = fmt.Errorf("JWT public key file not found: %s", instance.JWTPublicKeyPath)
			return
		}
		if instance.JWTPrivateKeyPath != "" {
			if _, err := os.Stat(instance.JWTPrivateKeyPath); os.IsNotExist(err) {
				errInit = fmt.Errorf("JWT private key file not found: %s", instance.JWTPrivateKeyPath)
				return
			}
		}
	})

	return instance, errInit
}

// GetConfig returns the loaded configuration.
// Panics if configuration has not been loaded.
func GetConfig() *Config {
	if instance == nil {
		panic("config: Load() must be called before GetConfig()")
	}
	return instance
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
