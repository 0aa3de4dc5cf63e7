package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gamewishlabs/gamewish-backend/internal/bot"
	"github.com/gamewishlabs/gamewish-backend/internal/pricing"
	storeapi "github.com/gamewishlabs/gamewish-backend/internal/sync"
	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "bot"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bot",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.Bot.Token == "" {
		logg.Error(context.Background(), "bot token is not configured", nil)
		os.Exit(1)
	}

	tracking := bot.NewTrackingStore(cfg.Bot.TrackingFile)
	if err := tracking.Load(); err != nil {
		logg.Error(context.Background(), "failed to load tracking file", err)
		os.Exit(1)
	}

	discordBot, err := bot.New(bot.Params{
		Config:   cfg.Bot,
		Prices:   pricing.NewClient(cfg.ITAD),
		Store:    storeapi.NewClient(cfg.Store),
		Tracking: tracking,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build bot", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info(ctx, "starting discord bot")
	if err := discordBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "bot stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "bot shut down")
}
