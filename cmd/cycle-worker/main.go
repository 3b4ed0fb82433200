// Command cycle-worker refreshes every card's active billing cycle on a
// cron schedule, keeping the memoized statements warm and logging the
// cards approaching their due dates.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"scadenze/internal/cache"
	"scadenze/internal/config"
	"scadenze/internal/core"
	"scadenze/internal/log"
	"scadenze/internal/services"
	"scadenze/internal/storage"
)

// refreshConcurrency bounds how many cards are resolved in parallel.
const refreshConcurrency = 8

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
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

	cycleMemo := cache.NewMemo[core.BillingCycle](cfg.CacheSize, cfg.CacheTTL)
	cycles := services.NewCycleService(repo, repo, repo, nil, cycleMemo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := func() {
		if err := refreshAllCycles(ctx, repo, cycles, logger); err != nil {
			logger.Error("Cycle refresh failed", log.FieldError, err, log.FieldOperation, log.OpRefresh)
		}
	}

	// Run once at startup, then on the configured schedule.
	logger.Info("Running initial cycle refresh", "schedule", cfg.CycleRefreshSpec)
	refresh()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CycleRefreshSpec, refresh); err != nil {
		logger.Error("Failed to schedule cycle refresh", log.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	cancel()
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
	logger.Info("Cycle-worker shutdown complete")
}

// refreshAllCycles resolves the active cycle of every card, a bounded
// number at a time. One card failing does not stop the others; the
// first error is reported after the sweep completes.
func refreshAllCycles(ctx context.Context, repo *storage.Repository, cycles *services.CycleService, logger *log.Logger) error {
	profiles, err := repo.ListCardProfiles(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(refreshConcurrency)

	for _, profile := range profiles {
		g.Go(func() error {
			cycle, err := cycles.ActiveCycle(ctx, profile.CardID)
			if err != nil {
				logger.Error("Failed to refresh card cycle",
					log.FieldError, err, log.FieldCardID, profile.CardID)
				return err
			}
			logger.Info("Refreshed active cycle",
				log.FieldCardID, cycle.CardID,
				log.FieldMonth, cycle.Month,
				log.FieldYear, cycle.Year,
				log.FieldCycleStatus, string(cycle.Status),
				"days_until_due", cycle.DaysUntilDue,
				"total_cents", cycle.Total.Cents)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Cycle refresh complete", "cards", len(profiles))
	return nil
}
