// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"HUB_DB_PATH" envDefault:"./data/hub.db"`
	ServerHost string `env:"HUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"HUB_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"HUB_ENV" envDefault:"development"`
	LogLevel   string `env:"HUB_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"HUB_UPLOADS_DIR" envDefault:"./uploads"`

	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `env:"HUB_TOKEN_TTL" envDefault:"720h"`

	// MaxUploadSize caps submission image uploads, in bytes.
	MaxUploadSize int64 `env:"HUB_MAX_UPLOAD_SIZE" envDefault:"10485760"`

	// Seeding configuration
	DoSeed bool `env:"HUB_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("HUB_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("HUB_MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}

	return cfg, nil
}
