package telegram

import (
	"context"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, ev Event) error

// withErrorHandling logs the failure, apologises and brings back the start menu.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, ev Event) error {
		if err := fn(ctx, ev); err != nil {
			h.logger.Error("handle error",
				zap.String("kind", ev.Kind.String()),
				zap.Int64("chat_id", ev.ChatID),
				zap.Error(err),
			)
			h.sendError(ev.ChatID, msgInternalError)
			h.sendStartMenu(ev)
			return nil
		}
		return nil
	}
}
