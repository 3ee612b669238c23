// Package main implements the entry point of the store service.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopkeeper/internal/store/adapters/postgres"
	"shopkeeper/internal/store/adapters/services"
	"shopkeeper/internal/store/adapters/snapshot"
	"shopkeeper/internal/store/adapters/textfile"
	"shopkeeper/internal/store/app"
	"shopkeeper/internal/store/config"
	"shopkeeper/internal/store/db"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
	"shopkeeper/pkg/shutdown"
)

// Environment variable names read before the configuration is loaded.
const (
	EnvLoggerMode  = "STORE_LOGGER_MODE"
	EnvLoggerLevel = "STORE_LOGGER_LEVEL"
)

// Error messages.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitStorage          = "failed to initialize storage backend"
	ErrInitAdmin            = "failed to configure admin login"
	ErrLoadData             = "failed to load store data"
)

// Ignorable logger sync errors.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Service messages.
const (
	LogServiceStarted      = "store service started"
	LogServiceShutdownDone = "store service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogSavingStore         = "saving store data"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogLoadingData         = "loading store data"
)

const migrationsDir = "migrations/store"

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogInitRepo, zap.String("backend", cfg.Storage.Backend))

		var (
			customerRepo repositories.CustomerRepository
			productRepo  repositories.ProductRepository
			orderRepo    repositories.OrderRepository
			storeRepo    repositories.StoreRepository
			database     *db.DB
		)

		switch cfg.Storage.Backend {
		case config.BackendPostgres:
			database, err = db.New(ctx, &cfg.Postgres, migrationsDir)
			if err != nil {
				log.Error(ctx, ErrInitDB, zap.Error(err))
				exitCode = 1
				return
			}
			factory := postgres.NewRepositoryFactory(database.Pool())
			customerRepo = factory.CustomerRepository()
			productRepo = factory.ProductRepository()
			orderRepo = factory.OrderRepository()
			storeRepo = factory.StoreRepository()
		case config.BackendText:
			factory := textfile.NewRepositoryFactory(cfg.Storage.DataDir)
			customerRepo = factory.CustomerRepository()
			productRepo = factory.ProductRepository()
			orderRepo = factory.OrderRepository()
			storeRepo = factory.StoreRepository()
		case config.BackendSnapshot:
			factory := snapshot.NewRepositoryFactory(filepath.Join(cfg.Storage.DataDir, cfg.Storage.SnapshotFile))
			customerRepo = factory.CustomerRepository()
			productRepo = factory.ProductRepository()
			orderRepo = factory.OrderRepository()
			storeRepo = factory.StoreRepository()
		}

		if err := storeRepo.Ping(ctx); err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		passwordService := services.NewBcrypt(0)
		customerService := app.NewCustomerService(customerRepo, passwordService)
		productService := app.NewProductService(productRepo)
		orderService := app.NewOrderService(orderRepo, customerService, productService)

		if err := customerService.ConfigureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Error(ctx, ErrInitAdmin, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogLoadingData)
		if err := customerService.Load(ctx); err != nil {
			log.Error(ctx, ErrLoadData, zap.Error(err))
			exitCode = 1
			return
		}
		if err := productService.Load(ctx); err != nil {
			log.Error(ctx, ErrLoadData, zap.Error(err))
			exitCode = 1
			return
		}
		if err := orderService.Load(ctx); err != nil {
			log.Error(ctx, ErrLoadData, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", cfg.Logging.Mode),
			zap.String("backend", cfg.Storage.Backend),
			zap.Int("customers", len(customerService.Customers())),
			zap.Int("products", len(productService.Products())),
			zap.Int("orders", len(orderService.Orders())),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		// Postgres persists every mutation in its own transaction, so its
		// only hook closes the pool. The file backends get a final combined
		// save instead.
		var hooks []func(context.Context) error
		if database != nil {
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			})
		} else {
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogSavingStore)
				return storeRepo.SaveAll(ctx, repositories.StoreData{
					Customers: customerService.Customers(),
					Products:  productService.Products(),
					Orders:    orderService.Orders(),
				})
			})
		}

		shutdown.Wait(cfg.Shutdown.GetTimeout(), hooks...)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
