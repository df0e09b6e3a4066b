package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/feeworks/internal/batch"
	"github.com/Simplici0/feeworks/internal/config"
	"github.com/Simplici0/feeworks/internal/db"
	"github.com/Simplici0/feeworks/internal/logging"
	"github.com/Simplici0/feeworks/internal/migrations"
	"github.com/Simplici0/feeworks/internal/pricing"
	"github.com/Simplici0/feeworks/internal/seed"
	"github.com/Simplici0/feeworks/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, version, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to prepare database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	st := store.New(database)
	engine := pricing.NewEngine(cfg.Fees, cfg.Workers)
	runner := batch.NewRunner(st, engine, cfg.CatalogCacheTTL, logger.Named("batch"))

	srv := &server{items: st, calc: runner, logger: logger.Named("http")}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(newRateLimiter(cfg.RateLimitRPS)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("listening",
		zap.String("addr", httpServer.Addr),
		zap.String("env", cfg.Env),
		zap.Int64("schema_version", version))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openDatabase opens the database, applies the embedded migrations and seeds
// the default fee catalog when enabled. Migrations run in every environment
// because the binary carries the only copy of them.
func openDatabase(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sql.DB, int64, error) {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, 0, err
	}

	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, 0, fmt.Errorf("run database migrations: %w", err)
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		database.Close()
		return nil, 0, fmt.Errorf("read schema version: %w", err)
	}

	if cfg.SeedDefaults {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			database.Close()
			return nil, 0, fmt.Errorf("seed fee catalog: %w", err)
		}
		logger.Info("fee catalog seeded", zap.Int("inserts", stats.Inserts), zap.Int("skipped_tables", stats.Skipped))
	}

	return database, version, nil
}
