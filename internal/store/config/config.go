// Package config contains the configuration for the store service.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/pkg/config"
	"shopkeeper/pkg/logger"
)

// Log and error messages for configuration loading.
const (
	LogLoadingConfig    = "Loading store service configuration"
	LogConfigLoaded     = "Configuration loaded successfully"
	ErrFailedLoadConfig = "Failed to load configuration"
	ErrUnknownBackend   = "unknown storage backend"

	serviceName = "store"
)

// Config is the full application configuration.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Admin    AdminConfig    `yaml:"admin"`
}

// Load reads the configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogLoadingConfig)

	cfg, err := config.Load[Config](ctx, serviceName)
	if err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if !cfg.Storage.IsValidBackend() {
		log.Error(ctx, ErrUnknownBackend, zap.String("backend", cfg.Storage.Backend))
		return nil, fmt.Errorf("%s: %q", ErrUnknownBackend, cfg.Storage.Backend)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("backend", cfg.Storage.Backend),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout),
		zap.Bool("admin_login", cfg.Admin.Enabled()))

	return cfg, nil
}
