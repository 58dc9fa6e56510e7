package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, ev Event) error {
	// Remove the user's "clock".
	h.request(tgbotapi.NewCallback(ev.CallbackID, ""))

	data := decodeCallback(ev.CallbackData)
	switch data.Action {
	case actionNext:
		return h.next(ctx, ev)
	default:
		h.logger.Debug("unknown callback", zap.String("data", data.Raw))
		return nil
	}
}
