// Package config loads runtime settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
//
// Environment variables:
//
//   - DATABASE_URL: PostgreSQL connection string. Required.
//   - JWT_SECRET: token signing secret. Default: default-secret-key (insecure)
//   - HTTP_ADDR: listen address. Default: :8080
//   - LOG_LEVEL: debug, info, warn or error. Default: info
//   - TOKEN_TTL: token lifetime. Default: 168h
//   - CORS_ALLOW_ORIGINS: comma-separated origins. Default: *
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget. Default: 10s
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSecret is the signing secret used when JWT_SECRET is unset. Tokens
// signed with it can be forged by anyone who knows this value.
const DefaultSecret = "default-secret-key"

var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")
	ErrInvalidTokenTTL    = errors.New("config: TOKEN_TTL must be positive")
	ErrEmptySecret        = errors.New("config: JWT_SECRET must not be empty")
)

type Config struct {
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	HTTPAddr         string        `mapstructure:"HTTP_ADDR"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	TokenTTL         time.Duration `mapstructure:"TOKEN_TTL"`
	CORSAllowOrigins []string      `mapstructure:"CORS_ALLOW_ORIGINS"`
	ShutdownTimeout  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are consulted.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", DefaultSecret)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("CORS_ALLOW_ORIGINS", []string{"*"})
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings that would prevent the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrEmptySecret)
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, ErrInvalidTokenTTL)
	}
	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether tokens would be signed with DefaultSecret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultSecret
}
