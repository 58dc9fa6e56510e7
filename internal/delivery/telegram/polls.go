package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/selfaudit-bot/internal/service"
)

// startPoll begins a poll: prologue or intro first, then the first question.
func (h *Handler) startPoll(ctx context.Context, ev Event, pollName string) error {
	poll, step, err := h.pollService.Start(ctx, ev.User.ID, pollName)
	if errors.Is(err, service.ErrPollNotFound) {
		h.send(newMessage(ev.ChatID, msgPollNotFound))
		h.sendStartMenu(ev)
		return nil
	}
	if err != nil {
		return err
	}

	h.logger.Info("poll started",
		zap.String("poll", poll.Name),
		zap.Int("questions", poll.QuestionCount()),
	)

	switch {
	case poll.Prologue != "":
		h.send(newMessage(ev.ChatID, poll.Prologue))
	case !poll.Quiz && poll.QuestionCount() > 0:
		h.send(newMessage(ev.ChatID, msgPollIntro))
	}

	h.presentStep(ev, step)
	return nil
}

// handlePollAnswer records the chosen option and either shows its comment
// with a "next" button or moves straight on.
func (h *Handler) handlePollAnswer(ctx context.Context, ev Event) error {
	res, err := h.pollService.Answer(ctx, ev.User.ID, ev.OptionIDs)
	switch {
	case errors.Is(err, service.ErrStaleSession):
		h.logger.Info("answer for inactive poll discarded", zap.Int64("chat_id", ev.ChatID))
		h.send(newMessage(ev.ChatID, msgSessionExpired))
		return h.showStartMenu(ctx, ev)
	case errors.Is(err, service.ErrPollFinished):
		h.logger.Debug("answer after last question ignored", zap.Int64("chat_id", ev.ChatID))
		return nil
	case errors.Is(err, service.ErrInvalidOption):
		h.logger.Warn("invalid poll answer ignored",
			zap.Ints("option_ids", ev.OptionIDs),
			zap.Error(err),
		)
		return nil
	case err != nil:
		return err
	}

	if res.Comment != "" {
		msg := newMessage(ev.ChatID, res.Comment)
		msg.ReplyMarkup = buildNextKeyboard()
		h.send(msg)
		return nil
	}

	return h.next(ctx, ev)
}

// next presents whatever follows the current level.
func (h *Handler) next(ctx context.Context, ev Event) error {
	step, err := h.pollService.Next(ctx, ev.User.ID)
	if errors.Is(err, service.ErrStaleSession) {
		h.logger.Debug("next for inactive poll ignored", zap.Int64("chat_id", ev.ChatID))
		return nil
	}
	if err != nil {
		return err
	}

	h.presentStep(ev, step)
	return nil
}

func (h *Handler) presentStep(ev Event, step service.Step) {
	switch step.Kind {
	case service.StepQuestion:
		h.send(newPollConfig(ev.ChatID, step.Prompt))
	case service.StepResult:
		h.sendResult(ev, step.Result)
	}
}

// sendResult reports a finished poll and brings back the start menu.
// The session is already idle at this point.
func (h *Handler) sendResult(ev Event, r *service.Result) {
	if r.Total > 0 {
		if r.Quiz {
			h.send(newMessage(ev.ChatID, formatQuizResult(r)))
		} else {
			for _, chunk := range splitMessage(formatTranscript(r), transcriptSeparator, messageLimit) {
				h.send(newMessage(ev.ChatID, chunk))
			}
		}
	}
	if r.Epilogue != "" {
		h.send(newMessage(ev.ChatID, r.Epilogue))
	}

	h.logger.Info("poll finished",
		zap.String("poll", r.PollName),
		zap.Int("score", r.Score),
		zap.Int("total", r.Total),
	)
	h.sendStartMenu(ev)
}
