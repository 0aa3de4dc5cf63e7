package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gamewishlabs/gamewish-backend/internal/dealcheck"
	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	"github.com/gamewishlabs/gamewish-backend/internal/wishlist"
	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	"github.com/gamewishlabs/gamewish-backend/pkg/db"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
	"github.com/gamewishlabs/gamewish-backend/pkg/metrics"
	"github.com/gamewishlabs/gamewish-backend/pkg/migrate"
	"github.com/gamewishlabs/gamewish-backend/pkg/redis"
)

const lockKeyFormat = "gw:deal-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "deal-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "deal-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := dealcheck.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.DealCheck.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create scan lock", err)
		os.Exit(1)
	}

	scanJob, err := dealcheck.NewDealScanJob(dealcheck.DealScanJobParams{
		Logger:  logg,
		Tracked: wishlist.NewRepository(dbClient.DB()),
		Prices:  pricing.NewClient(cfg.ITAD),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deal scan job", err)
		os.Exit(1)
	}

	service, err := dealcheck.NewService(dealcheck.ServiceParams{
		Logger:   logg,
		Registry: dealcheck.NewRegistry(scanJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.DealCheck.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deal worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting deal worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "deal worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "deal worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
