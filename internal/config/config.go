package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// minAuthSecretLen is the minimum length accepted for the token signing key.
const minAuthSecretLen = 32

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	MySQLDSN   string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/auratask?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr  string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB    int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass  string `env:"REDIS_PASSWORD"`

	// AuthSecret signs session tokens. It has no default on purpose:
	// the server must not start with a guessable signing key.
	AuthSecret string `env:"AUTH_SECRET,required"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	SwaggerHost        string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment variables.
// It fails when AUTH_SECRET is missing or too short to be a usable signing key.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.AuthSecret) < minAuthSecretLen {
		return nil, fmt.Errorf("AUTH_SECRET must be at least %d characters", minAuthSecretLen)
	}
	return cfg, nil
}

// CORSOrigins parses the comma-separated origins list.
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
