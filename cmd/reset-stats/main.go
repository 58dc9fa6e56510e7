// Command reset-stats drops every answer counter. Poll keys stay registered.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aliskhannn/selfaudit-bot/internal/config"
	redisinfra "github.com/aliskhannn/selfaudit-bot/internal/infra/redis"
	"github.com/aliskhannn/selfaudit-bot/internal/logger"
	"github.com/aliskhannn/selfaudit-bot/internal/repository"
	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

func main() {
	cfg, err := config.LoadWithoutBot()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisinfra.NewClient(ctx, cfg.Redis.URL, lg)
	if err != nil {
		lg.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	registry, err := repository.NewKeyRegistry(rdb, cfg.KeyCacheSize)
	if err != nil {
		lg.Fatal("failed to create poll key registry", zap.Error(err))
	}
	defer registry.Close()

	catalog, err := repository.NewCatalog(cfg.CatalogPath)
	if err != nil {
		lg.Fatal("failed to load catalog", zap.Error(err))
	}

	stats := service.NewStatsService(repository.NewStatsRepository(rdb, registry), registry, catalog, nil)

	deleted, err := stats.ResetCounters(ctx)
	if err != nil {
		lg.Fatal("failed to reset counters", zap.Error(err))
	}
	lg.Info("answer counters reset", zap.Int("deleted", deleted))
}
