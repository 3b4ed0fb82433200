// Command settle-worker consumes paid-cycle messages and marks the
// matching installments as settled.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"scadenze/internal/amqp"
	"scadenze/internal/config"
	"scadenze/internal/log"
	"scadenze/internal/services"
	"scadenze/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the settle-worker")
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("Failed to run migrations", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	processor := services.NewSettleProcessor(repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting settle-worker", "queue", cfg.AMQPQueue)
	if err := consumeLoop(ctx, cfg, processor, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consume loop terminated", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Settle-worker shutdown complete")
}

// consumeLoop keeps a consumer alive until ctx is cancelled, rebuilding
// the AMQP client when the broker connection drops.
func consumeLoop(ctx context.Context, cfg *config.Config, processor *services.SettleProcessor, logger *log.Logger) error {
	for {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, retrying", log.FieldError, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				continue
			}
		}

		err = client.ConsumeCyclePaid(ctx, func(msg *amqp.CyclePaidMessage) error {
			handleCtx, handleCancel := context.WithTimeout(ctx, 30*time.Second)
			defer handleCancel()
			return processor.HandleCyclePaid(handleCtx, msg)
		})
		client.Close()

		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("Consumer stopped, reconnecting", log.FieldError, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}
