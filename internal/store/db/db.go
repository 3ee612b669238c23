// Package db wires up the database connection for the store service.
package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shopkeeper/internal/store/config"
	"shopkeeper/pkg/db/postgres"
	"shopkeeper/pkg/logger"
)

// Logger messages.
const (
	LogDBInitializing    = "initializing store database"
	LogDBInitialized     = "store database initialized successfully"
	LogMigrationStarting = "starting database migrations for store service"
)

// Error messages.
const (
	ErrDBMigrations      = "failed to apply store database migrations"
	ErrDBConnection      = "failed to connect to store database"
	ErrGetPath           = "failed to get path"
	ErrDBCheckConnection = "error checking the database connection"
)

const filePrefix = "file://"

// DB wraps the store service database connection.
type DB struct {
	database *postgres.Database
}

// New initializes the database connection after applying migrations.
func New(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	var migrationsPath string
	if !filepath.IsAbs(migrationsDir) {
		absPath, err := filepath.Abs(migrationsDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err)
		}
		migrationsPath = filePrefix + absPath
	} else {
		migrationsPath = filePrefix + migrationsDir
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), cfg.MinConn, cfg.MaxConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{
		database: database,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool returns the connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.database.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}
