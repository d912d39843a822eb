// gymstack is the multi-tenant gym SaaS backend. Every gym gets its own
// PostgreSQL schema inside one shared database; this process creates
// and evolves those schemas and routes tenant-scoped work into them.
//
// It reads configuration from gymstack.json in the working directory
// (with GYMSTACK_* environment overrides), connects to PostgreSQL,
// bootstraps the global schema, sweeps every existing tenant schema up
// to the current table set, and starts the management HTTP API.
//
// Usage:
//
//	./gymstack                # reads ./gymstack.json, starts server
//	docker compose up -d      # runs via Docker with mounted config
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gymstack-host/gymstack/internal/config"
	"github.com/gymstack-host/gymstack/internal/database"
	"github.com/gymstack-host/gymstack/internal/integrity"
	"github.com/gymstack-host/gymstack/internal/logging"
	"github.com/gymstack-host/gymstack/internal/registry"
	"github.com/gymstack-host/gymstack/internal/server"
	"github.com/gymstack-host/gymstack/internal/tenant"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("gymstack.json")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("gymstack starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("db", cfg.DBConn+"/"+cfg.DBName))

	// Root context cancelled on SIGINT or SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	// Connect to PostgreSQL and bootstrap the global schema.
	db, err := database.Open(ctx, cfg.ConnString(), cfg.PoolMaxConns)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database connected, global schema bootstrapped")

	schemas := tenant.NewManager(db, logger)

	// Bring every existing tenant schema up to the current table set.
	// Per-schema failures are already logged; a failed tenant degrades
	// only itself, so startup proceeds.
	report, err := schemas.MigrateAll(ctx)
	if err != nil {
		logger.Fatal("migration sweep could not discover tenant schemas", zap.Error(err))
	}
	logger.Info(report.Summary())

	tenants := registry.NewStore(db)
	router := tenant.NewRouter(db, cfg.AcquireTimeout(), logger)
	validator := integrity.NewValidator(db, router)

	// Start the HTTP server (blocks until the context is cancelled).
	srv := server.New(cfg, db, tenants, schemas, router, validator, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("gymstack stopped")
}
