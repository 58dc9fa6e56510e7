package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

// handleText routes a text message: commands, menu buttons, admin statistics.
func (h *Handler) handleText(ctx context.Context, ev Event) error {
	text := strings.TrimSpace(ev.Text)

	if ev.Command == "start" || text == btnHome {
		return h.showStartMenu(ctx, ev)
	}

	if h.isAdmin(ev) {
		switch {
		case text == btnShowStats:
			return h.showStatsMenu(ctx, ev)
		case text == btnTotalClicks:
			return h.showTotalAnswers(ctx, ev)
		case text == btnCompletions:
			return h.showCompletions(ctx, ev)
		case text == btnResetStats:
			h.send(newPlainMessage(ev.ChatID, msgResetDisabled))
			return nil
		case strings.HasPrefix(text, statsPrefix):
			return h.showPollReport(ctx, ev, strings.TrimPrefix(text, statsPrefix))
		}
	}

	if section, ok := h.catalog.Section(text); ok {
		if section.IsSubmenu() {
			return h.showSubmenu(ev, section.Prompt, section.Polls)
		}
		return h.startPoll(ctx, ev, section.Poll)
	}

	if title := h.catalog.EmergencyTitle(); title != "" && text == title {
		return h.showEmergencyMenu(ev)
	}

	if article, err := h.catalog.Article(text); err == nil {
		return h.showArticle(ev, article.Animation, article.Messages)
	}

	if _, err := h.catalog.Poll(text); err == nil {
		return h.startPoll(ctx, ev, text)
	}

	h.logger.Debug("unknown text", zap.Int64("chat_id", ev.ChatID))
	h.send(newMessage(ev.ChatID, msgUnknownCommand))
	return h.showStartMenu(ctx, ev)
}

// showStartMenu returns the user to idle and shows the start menu.
func (h *Handler) showStartMenu(ctx context.Context, ev Event) error {
	if err := h.pollService.Reset(ctx, ev.User.ID); err != nil {
		return err
	}
	h.sendStartMenu(ev)
	return nil
}

func (h *Handler) sendStartMenu(ev Event) {
	msg := newPlainMessage(ev.ChatID, msgStartMenu)
	msg.ReplyMarkup = buildStartKeyboard(h.catalog.Sections(), h.catalog.EmergencyTitle(), h.isAdmin(ev))
	h.send(msg)
}

func (h *Handler) showSubmenu(ev Event, prompt string, polls []string) error {
	if prompt == "" {
		prompt = msgStartMenu
	}
	msg := newPlainMessage(ev.ChatID, prompt)
	msg.ReplyMarkup = buildListKeyboard(polls)
	h.send(msg)
	return nil
}

func (h *Handler) showEmergencyMenu(ev Event) error {
	articles := h.catalog.Articles()
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}

	msg := newPlainMessage(ev.ChatID, msgChooseArticle)
	msg.ReplyMarkup = buildListKeyboard(titles)
	h.send(msg)
	return nil
}

func (h *Handler) showArticle(ev Event, animation string, messages []string) error {
	if animation != "" {
		h.send(tgbotapi.NewAnimation(ev.ChatID, tgbotapi.FileURL(animation)))
	}
	for _, m := range messages {
		h.send(newMessage(ev.ChatID, m))
	}
	return h.showEmergencyMenu(ev)
}

func (h *Handler) showStatsMenu(ctx context.Context, ev Event) error {
	saved, err := h.statsService.SavedPolls(ctx)
	if err != nil {
		return err
	}

	text := msgStatsMenu
	if len(saved) == 0 {
		text = msgNoSavedPolls
	}
	msg := newPlainMessage(ev.ChatID, text)
	msg.ReplyMarkup = buildStatsKeyboard(saved)
	h.send(msg)
	return nil
}

func (h *Handler) showTotalAnswers(ctx context.Context, ev Event) error {
	total, err := h.statsService.TotalAnswers(ctx)
	if err != nil {
		return err
	}
	h.send(newPlainMessage(ev.ChatID, formatTotalAnswers(total)))
	return nil
}

func (h *Handler) showCompletions(ctx context.Context, ev Event) error {
	counts, err := h.statsService.Completions(ctx)
	if errors.Is(err, service.ErrArchiveDisabled) {
		h.send(newPlainMessage(ev.ChatID, msgArchiveDisabled))
		return nil
	}
	if err != nil {
		return err
	}
	h.send(newPlainMessage(ev.ChatID, formatCompletions(counts)))
	return nil
}

func (h *Handler) showPollReport(ctx context.Context, ev Event, pollName string) error {
	stats, err := h.statsService.PollReport(ctx, strings.TrimSpace(pollName))
	if errors.Is(err, service.ErrPollNotFound) {
		h.send(newMessage(ev.ChatID, msgPollNotFound))
		return nil
	}
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(formatPollReport(stats), "\n\n", messageLimit) {
		h.send(newPlainMessage(ev.ChatID, chunk))
	}
	return nil
}
