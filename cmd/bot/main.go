// Package main provides the bot entry point: the inbox worker, the
// ingestion scheduler, and the ops API in one process.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camsettings-bot/internal/api"
	"github.com/camsettings-bot/internal/config"
	"github.com/camsettings-bot/internal/gateway"
	"github.com/camsettings-bot/internal/ingest"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/resolver"
	"github.com/camsettings-bot/internal/service"
	"github.com/camsettings-bot/internal/storage"
	"github.com/camsettings-bot/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)
	logger := logging.GetGlobalLogger()

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logger.WithFields(map[string]interface{}{
		"subreddit": cfg.Reddit.Subreddit,
		"user":      cfg.Reddit.Username,
	}).Info("Starting camera settings bot")

	// Store connections
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// The reply cache is optional infrastructure: a missing Redis only
	// costs store lookups.
	var redis *storage.RedisCache
	var replyCache *storage.ReplyCache
	redis, err = storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without reply cache")
		redis = nil
	} else {
		defer redis.Close()
		replyCache = storage.NewReplyCache(redis, cfg.Cache.TTL)
	}

	logger.Info("Store connections established")

	// Engine and collaborators
	repo := storage.NewSettingsRepository(postgres)
	engine := service.NewMessageService(repo, replyCache, cfg.Reddit.Username, logger)
	client := gateway.NewRedditClient(&cfg.Reddit, logger)

	inboxWorker, err := worker.NewInboxWorker(&worker.InboxWorkerConfig{
		Client:       client,
		Engine:       engine,
		BotUsername:  cfg.Reddit.Username,
		PollInterval: cfg.Reddit.PollInterval,
		CommentLimit: cfg.Reddit.CommentLimit,
		Logger:       logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create inbox worker")
	}

	refresher := ingest.NewRefresher(&cfg.Ingest, repo, replyCache, logger)
	scheduler := worker.NewRefreshScheduler(refresher, cfg.Ingest.Schedule, logger)

	// Ops API
	serverConfig := &api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var cachePinger api.Pinger
	if redis != nil {
		cachePinger = redis
	}
	server := api.NewServer(serverConfig, resolver.New(repo), repo, postgres, cachePinger, inboxWorker, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := inboxWorker.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start inbox worker")
	}
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start refresh scheduler")
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Ops API server failed")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Ops API shutdown failed")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Refresh scheduler shutdown failed")
	}
	if err := inboxWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Inbox worker shutdown failed")
	}
	cancel()

	logger.Info("Bot exited")
}
