package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"scadenze/internal/amqp"
	"scadenze/internal/cache"
	"scadenze/internal/config"
	"scadenze/internal/core"
	apphttp "scadenze/internal/http"
	"scadenze/internal/log"
	"scadenze/internal/services"
	"scadenze/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("Failed to run migrations", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without it payments still land in SQLite, they
	// just are not announced to the settle-worker.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without messaging", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized")
		}
	} else {
		logger.Info("AMQP disabled - paid cycles will not be announced")
	}

	projectionMemo := cache.NewMemo[[]core.Occurrence](cfg.CacheSize, cfg.CacheTTL)
	cycleMemo := cache.NewMemo[core.BillingCycle](cfg.CacheSize, cfg.CacheTTL)
	projectionMemo.StartJanitor(cfg.CacheTTL)
	cycleMemo.StartJanitor(cfg.CacheTTL)
	defer projectionMemo.StopJanitor()
	defer cycleMemo.StopJanitor()

	projections := services.NewProjectionService(repo, projectionMemo, logger)
	cycles := services.NewCycleService(repo, repo, repo, publisher, cycleMemo, logger)

	handler := apphttp.NewHandler(projections, cycles, logger)
	srv := apphttp.NewServer(":"+cfg.Port, handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting scadenze server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
