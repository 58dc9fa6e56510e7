package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/selfaudit-bot/internal/config"
	"github.com/aliskhannn/selfaudit-bot/internal/delivery/telegram"
	"github.com/aliskhannn/selfaudit-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/selfaudit-bot/internal/infra/postgres/repository"
	redisinfra "github.com/aliskhannn/selfaudit-bot/internal/infra/redis"
	"github.com/aliskhannn/selfaudit-bot/internal/logger"
	"github.com/aliskhannn/selfaudit-bot/internal/repository"
	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

func main() {
	cfg, err := config.Load()
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

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Главное меню",
		},
	}
	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	rdb, err := redisinfra.NewClient(ctx, cfg.Redis.URL, lg)
	if err != nil {
		lg.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	catalog, err := repository.NewCatalog(cfg.CatalogPath)
	if err != nil {
		lg.Fatal("failed to load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}

	registry, err := repository.NewKeyRegistry(rdb, cfg.KeyCacheSize)
	if err != nil {
		lg.Fatal("failed to create poll key registry", zap.Error(err))
	}
	defer registry.Close()

	if err = registry.Warm(ctx, catalog.PollNames()); err != nil {
		lg.Fatal("failed to allocate poll keys", zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(rdb, cfg.UIDSalt, cfg.SessionLifetime)
	statsRepo := repository.NewStatsRepository(rdb, registry)

	var completions service.CompletionRepository
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		}, lg)
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err = postgres.Migrate(ctx, pool); err != nil {
			lg.Fatal("failed to migrate database", zap.Error(err))
		}
		completions = pgrepo.NewCompletionRepository(pool)
	} else {
		lg.Info("completion archive disabled")
	}

	pollService := service.NewPollService(sessionRepo, catalog, statsRepo, completions, lg)
	statsService := service.NewStatsService(statsRepo, registry, catalog, completions)

	handler := telegram.NewHandler(bot, lg, pollService, statsService, catalog, cfg)

	g, gctx := errgroup.WithContext(ctx)

	var updates <-chan tgbotapi.Update
	if cfg.Webhook.Enabled {
		path := "/" + uuid.NewString() + "/"
		server := telegram.NewWebhookServer(cfg.Webhook.Listen, path, lg)

		hook, err := tgbotapi.NewWebhook("https://" + cfg.Webhook.URL + path)
		if err != nil {
			lg.Fatal("failed to build webhook", zap.Error(err))
		}
		if _, err = bot.Request(hook); err != nil {
			lg.Fatal("failed to register webhook", zap.Error(err))
		}

		updates = server.Updates()
		g.Go(func() error { return server.Run(gctx) })
	} else {
		if _, err = bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			lg.Warn("failed to delete webhook", zap.Error(err))
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates = bot.GetUpdatesChan(u)
		g.Go(func() error {
			<-gctx.Done()
			bot.StopReceivingUpdates()
			return nil
		})
	}

	g.Go(func() error { return handler.Run(gctx, updates, cfg.Workers) })

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("bot stopped with error", zap.Error(err))
		return
	}
	lg.Info("shutdown signal received")
}
