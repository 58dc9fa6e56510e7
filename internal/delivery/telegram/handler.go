package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot          Bot
	logger       *zap.Logger
	pollService  PollService
	statsService StatsService
	catalog      Catalog
	access       AccessPolicy
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	pollService PollService,
	statsService StatsService,
	catalog Catalog,
	access AccessPolicy,
) *Handler {
	return &Handler{
		bot:          bot,
		logger:       logger,
		pollService:  pollService,
		statsService: statsService,
		catalog:      catalog,
		access:       access,
	}
}

// Run serves updates with workers sharded by user.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update, workers int) error {
	h.logger.Info("telegram handler started", zap.Int("workers", workers))
	defer h.logger.Info("telegram handler stopped")

	return NewDispatcher(workers, h.HandleEvent, h.logger).Run(ctx, updates)
}

// HandleEvent routes one event to its handler.
func (h *Handler) HandleEvent(ctx context.Context, ev Event) {
	h.logger.Debug("event received",
		zap.String("kind", ev.Kind.String()),
		zap.Int64("chat_id", ev.ChatID),
	)

	switch ev.Kind {
	case EventText:
		_ = h.withErrorHandling(h.handleText)(ctx, ev)
	case EventPollAnswer:
		_ = h.withErrorHandling(h.handlePollAnswer)(ctx, ev)
	case EventCallback:
		_ = h.withErrorHandling(h.handleCallback)(ctx, ev)
	}
}

func (h *Handler) isAdmin(ev Event) bool {
	return h.access != nil && h.access.IsAdmin(ev.User.Username)
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Warn("telegram request failed",
			zap.Error(err),
		)
	}
}
