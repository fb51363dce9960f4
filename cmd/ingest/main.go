// Package main runs one ingestion refresh cycle and exits. Useful for
// seeding a fresh database or forcing a refresh outside the schedule.
package main

import (
	"context"
	"time"

	"github.com/camsettings-bot/internal/config"
	"github.com/camsettings-bot/internal/ingest"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	var replyCache *storage.ReplyCache
	if redis, err := storage.NewRedisCache(&cfg.Database.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, skipping cache invalidation")
	} else {
		defer redis.Close()
		replyCache = storage.NewReplyCache(redis, cfg.Cache.TTL)
	}

	repo := storage.NewSettingsRepository(postgres)
	refresher := ingest.NewRefresher(&cfg.Ingest, repo, replyCache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := refresher.Refresh(ctx); err != nil {
		logger.WithError(err).Fatal("Refresh failed")
	}

	logger.Info("Refresh completed")
}
