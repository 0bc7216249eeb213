// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the server needs to start.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// DBPath is the sqlite database file path.
	DBPath string
	// JWTSecret signs session tokens. Required.
	JWTSecret string
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
	// EventBufferSize is the event worker's channel capacity.
	EventBufferSize int
}

// Load reads configuration from the environment, applying defaults for
// everything except the JWT secret.
func Load() (Config, error) {
	cfg := Config{
		Addr:            getEnv("ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "./data/potluck.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        24 * time.Hour,
		EventBufferSize: 256,
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = d
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
